package api

import (
	"sync/atomic"

	"github.com/annel0/worldcore/internal/chunk"
	"github.com/annel0/worldcore/internal/world"
)

// Status - то, что отдаёт /world
type Status struct {
	Frame   uint64         `json:"frame"`
	World   world.Snapshot `json:"world"`
	Chunks  chunk.Stats    `json:"chunks"`
	Storage string         `json:"storage"`
}

// StatusBoard хранит последний снимок. Основной цикл публикует,
// HTTP-обработчики читают из своих горутин.
type StatusBoard struct {
	latest atomic.Pointer[Status]
}

// NewStatusBoard создаёт пустую доску
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// Publish заменяет снимок. st после вызова не изменяется.
func (b *StatusBoard) Publish(st Status) {
	b.latest.Store(&st)
}

// Latest возвращает последний снимок; false, если ещё не было ни одного.
func (b *StatusBoard) Latest() (Status, bool) {
	st := b.latest.Load()
	if st == nil {
		return Status{}, false
	}
	return *st, true
}

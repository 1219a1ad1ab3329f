package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("world record not found")
	ErrQueueFull    = errors.New("world update queue full")
	ErrClosed       = errors.New("storage closed")
	ErrEmptyUpdate  = errors.New("world update carries no facts")
	ErrMissingWorld = errors.New("world update without world id")
)

// WorldUpdate - мутация фактов мира. Передаётся только одно изменившееся
// поле: {worldId, time} или {worldId, days}; nil означает "не менять".
type WorldUpdate struct {
	WorldID string   `json:"world_id"`
	Time    *float64 `json:"time,omitempty"`
	Days    *int     `json:"days,omitempty"`
}

// TimeUpdate создаёт мутацию времени суток
func TimeUpdate(worldID string, t float64) WorldUpdate {
	return WorldUpdate{WorldID: worldID, Time: &t}
}

// DaysUpdate создаёт мутацию счётчика дней
func DaysUpdate(worldID string, days int) WorldUpdate {
	return WorldUpdate{WorldID: worldID, Days: &days}
}

// Validate проверяет, что мутация адресована миру и что-то меняет
func (u WorldUpdate) Validate() error {
	if u.WorldID == "" {
		return ErrMissingWorld
	}
	if u.Time == nil && u.Days == nil {
		return ErrEmptyUpdate
	}
	return nil
}

// Kind возвращает имя изменяемого факта (для метрик и логов)
func (u WorldUpdate) Kind() string {
	switch {
	case u.Time != nil && u.Days != nil:
		return "time+days"
	case u.Time != nil:
		return "time"
	case u.Days != nil:
		return "days"
	default:
		return "none"
	}
}

func (u WorldUpdate) String() string {
	s := fmt.Sprintf("world=%s", u.WorldID)
	if u.Time != nil {
		s += fmt.Sprintf(" time=%.2f", *u.Time)
	}
	if u.Days != nil {
		s += fmt.Sprintf(" days=%d", *u.Days)
	}
	return s
}

// WorldRecord - сохранённое состояние фактов мира
type WorldRecord struct {
	WorldID   string    `json:"world_id" bson:"_id"`
	Time      float64   `json:"time" bson:"time"`
	Days      int       `json:"days" bson:"days"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Apply сливает частичную мутацию в запись
func (r *WorldRecord) Apply(u WorldUpdate, now time.Time) {
	r.WorldID = u.WorldID
	if u.Time != nil {
		r.Time = *u.Time
	}
	if u.Days != nil {
		r.Days = *u.Days
	}
	r.UpdatedAt = now
}

// Store - постоянное хранилище фактов мира
type Store interface {
	// ApplyUpdate сливает мутацию с сохранённой записью.
	ApplyUpdate(ctx context.Context, u WorldUpdate) error

	// Load возвращает запись мира или ErrNotFound.
	Load(ctx context.Context, worldID string) (WorldRecord, error)

	// Close закрывает соединение с хранилищем.
	Close() error
}

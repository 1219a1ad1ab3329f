package world

import (
	"context"

	"github.com/annel0/worldcore/internal/logging"
	"github.com/annel0/worldcore/internal/observability"
	"github.com/annel0/worldcore/internal/storage"
)

// syncTime сохраняет время суток. Нулевое время - небо ещё не
// запустилось, мутация не отправляется.
func (w *World) syncTime() {
	t := w.sky.Time()
	if t == 0 {
		return
	}
	w.state.Time = t
	w.persistFact(storage.TimeUpdate(w.state.ID, t))
}

func (w *World) onNewDay() {
	if w.closed {
		return
	}
	days := w.sky.Days()
	if days == 0 {
		return
	}
	w.state.Days = days
	w.persistFact(storage.DaysUpdate(w.state.ID, days))
}

// persistFact отправляет мутацию без повторов. Ошибка только логируется.
func (w *World) persistFact(u storage.WorldUpdate) {
	if w.persist == nil {
		return
	}
	observability.MutationsTotal.WithLabelValues(u.Kind()).Inc()
	if err := w.persist.UpdateWorld(context.Background(), u); err != nil {
		observability.MutationFailuresTotal.Inc()
		logging.Warn("Мутация %s не принята: %v", u, err)
	}
}

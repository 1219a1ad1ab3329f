package world

import "time"

// Scheduler запускает периодические задачи по внешним часам кадров.
// Сам времени не читает: время приходит через Advance.
type Scheduler struct {
	timers []*Timer
	now    time.Time
	seen   bool
}

// Timer - задача планировщика
type Timer struct {
	interval  time.Duration
	fn        func()
	next      time.Time
	anchored  bool
	cancelled bool
	runs      int
}

// NewScheduler создаёт пустой планировщик
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Every регистрирует fn с периодом interval (должен быть > 0).
// Первый запуск - через interval после первого известного момента времени.
func (s *Scheduler) Every(interval time.Duration, fn func()) *Timer {
	t := &Timer{interval: interval, fn: fn}
	if s.seen {
		t.next = s.now.Add(interval)
		t.anchored = true
	}
	s.timers = append(s.timers, t)
	return t
}

// Advance сообщает текущее время и запускает созревшие задачи, каждую не
// более одного раза. Пропущенные периоды не догоняются.
func (s *Scheduler) Advance(now time.Time) {
	s.now = now
	s.seen = true

	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live

	for _, t := range append([]*Timer(nil), s.timers...) {
		if t.cancelled {
			continue
		}
		if !t.anchored {
			t.next = now.Add(t.interval)
			t.anchored = true
			continue
		}
		if now.Before(t.next) {
			continue
		}

		t.runs++
		t.fn()

		t.next = t.next.Add(t.interval)
		if !t.next.After(now) {
			t.next = now.Add(t.interval)
		}
	}
}

// Len возвращает число активных задач
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Cancel останавливает задачу. Повторный вызов ничего не делает.
func (t *Timer) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
}

// Runs возвращает число запусков задачи
func (t *Timer) Runs() int { return t.runs }

package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_FirstAdvanceAnchors(t *testing.T) {
	s := NewScheduler()
	runs := 0
	s.Every(100*time.Millisecond, func() { runs++ })

	base := time.Unix(0, 0)
	s.Advance(base)
	assert.Equal(t, 0, runs)

	s.Advance(base.Add(99 * time.Millisecond))
	assert.Equal(t, 0, runs)
	s.Advance(base.Add(100 * time.Millisecond))
	assert.Equal(t, 1, runs)
}

func TestScheduler_NoCatchUp(t *testing.T) {
	s := NewScheduler()
	timer := s.Every(100*time.Millisecond, func() {})

	base := time.Unix(0, 0)
	s.Advance(base)
	// кадр на секунду позже запускает задачу один раз
	s.Advance(base.Add(time.Second))
	assert.Equal(t, 1, timer.Runs())

	s.Advance(base.Add(1050 * time.Millisecond))
	assert.Equal(t, 1, timer.Runs())
	s.Advance(base.Add(1100 * time.Millisecond))
	assert.Equal(t, 2, timer.Runs())
}

func TestScheduler_LateRegistrationAnchorsToLastFrame(t *testing.T) {
	s := NewScheduler()
	base := time.Unix(0, 0)
	s.Advance(base)

	timer := s.Every(50*time.Millisecond, func() {})
	s.Advance(base.Add(50 * time.Millisecond))
	assert.Equal(t, 1, timer.Runs())
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	var second *Timer
	first := s.Every(10*time.Millisecond, func() { second.Cancel() })
	second = s.Every(10*time.Millisecond, func() {})

	base := time.Unix(0, 0)
	s.Advance(base)
	s.Advance(base.Add(10 * time.Millisecond))

	assert.Equal(t, 1, first.Runs())
	assert.Equal(t, 0, second.Runs(), "отменённая в том же кадре задача не запускается")
	assert.Equal(t, 1, s.Len())

	first.Cancel()
	first.Cancel()
	var nilTimer *Timer
	nilTimer.Cancel()
	assert.Equal(t, 0, s.Len())
}

package sky

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSky_TickWrapsDay(t *testing.T) {
	s := New(8, 2, Options{Speed: 1, DayLength: 10})

	fired := 0
	s.SubscribeNewDay(func() {
		fired++
		assert.Equal(t, 3, s.Days(), "наблюдатель видит уже увеличенный счётчик")
	})

	s.Tick()
	assert.Equal(t, 9.0, s.Time())
	assert.Equal(t, 0, fired)

	s.Tick()
	assert.Equal(t, 0.0, s.Time())
	assert.Equal(t, 3, s.Days())
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0.0, s.Progress())
}

func TestSky_SingleSubscriber(t *testing.T) {
	s := New(0, 0, Options{Speed: 5, DayLength: 5})

	first, second := 0, 0
	unsubFirst := s.SubscribeNewDay(func() { first++ })
	unsubSecond := s.SubscribeNewDay(func() { second++ })

	// отписка заменённого наблюдателя не снимает текущего
	unsubFirst()
	s.Tick()
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	unsubSecond()
	s.Tick()
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, s.Days())
}

func TestSky_NormalizesInput(t *testing.T) {
	s := New(-3, 0, Options{Speed: 1})
	assert.Equal(t, 0.0, s.Time())
	assert.Equal(t, 0.0, New(2400, 0, Options{}).Time())
}

package sky

// Options задаёт скорость хода времени
type Options struct {
	Speed     float64 // прирост времени за тик
	DayLength float64 // длина суток в единицах времени
}

// Sky ведёт время суток и счётчик дней. Не потокобезопасен: вызывается
// только из основного цикла.
type Sky struct {
	time float64
	days int
	opts Options

	onNewDay func()
	owner    *int // токен текущей подписки
}

// New создаёт небо с сохранёнными временем и днями
func New(time float64, days int, opts Options) *Sky {
	if opts.DayLength <= 0 {
		opts.DayLength = 2400
	}
	if time < 0 || time >= opts.DayLength {
		time = 0
	}
	return &Sky{time: time, days: days, opts: opts}
}

// Time возвращает текущее время суток в [0, DayLength)
func (s *Sky) Time() float64 { return s.time }

// Days возвращает число прошедших дней
func (s *Sky) Days() int { return s.days }

// Progress возвращает долю прошедших суток в [0, 1)
func (s *Sky) Progress() float64 { return s.time / s.opts.DayLength }

// Tick продвигает время на один шаг. При переходе через конец суток
// увеличивает счётчик дней и уведомляет наблюдателя после обновления.
func (s *Sky) Tick() {
	s.time += s.opts.Speed
	if s.time < s.opts.DayLength {
		return
	}

	for s.time >= s.opts.DayLength {
		s.time -= s.opts.DayLength
		s.days++
		if s.onNewDay != nil {
			s.onNewDay()
		}
	}
}

// SubscribeNewDay регистрирует единственного наблюдателя смены дня.
// Повторная подписка заменяет предыдущего. Возвращает функцию отписки,
// которая снимает только своего наблюдателя.
func (s *Sky) SubscribeNewDay(fn func()) func() {
	token := new(int)
	s.onNewDay = fn
	s.owner = token
	return func() {
		if s.owner == token {
			s.onNewDay = nil
			s.owner = nil
		}
	}
}

package world

// Snapshot - копия состояния мира для отладочного API.
// Снимается на основном потоке и дальше только читается.
type Snapshot struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Seed        int64        `json:"seed"`
	Time        float64      `json:"time"`
	Days        int          `json:"days"`
	Phase       string       `json:"phase"`
	Setup       bool         `json:"setup"`
	ChunksReady bool         `json:"chunks_ready"`
	PlayerID    string       `json:"player_id"`
	PlayerY     *float64     `json:"player_y,omitempty"`
	Position    []float64    `json:"position,omitempty"`
	Target      *TargetBlock `json:"target,omitempty"`
	Timers      int          `json:"timers"`
	Closed      bool         `json:"closed"`
}

// Snapshot снимает текущее состояние
func (w *World) Snapshot() Snapshot {
	st := w.state.clone()
	s := Snapshot{
		ID:          st.ID,
		Name:        st.Name,
		Seed:        st.Seed,
		Time:        st.Time,
		Days:        st.Days,
		Phase:       st.Phase.String(),
		Setup:       st.IsSetup(),
		ChunksReady: w.chunks.IsReady(),
		PlayerID:    st.PlayerID,
		PlayerY:     st.PlayerY,
		Target:      copyTarget(w.target),
		Timers:      w.sched.Len(),
		Closed:      w.closed,
	}
	if w.sky != nil {
		s.Time = w.sky.Time()
		s.Days = w.sky.Days()
	}
	if w.player != nil {
		p := w.player.Position()
		s.Position = []float64{p.X(), p.Y(), p.Z()}
	}
	return s
}

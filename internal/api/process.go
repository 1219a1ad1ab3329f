package api

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// processStats собирает нагрузку процесса для /health
type processStats struct {
	proc    *process.Process
	started time.Time
}

func newProcessStats() *processStats {
	ps := &processStats{started: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		ps.proc = proc
	}
	return ps
}

// Snapshot возвращает CPU процесса в процентах, RSS, кучу и горутины.
// Поля gopsutil пропускаются, если платформа их не отдаёт.
func (ps *processStats) Snapshot() map[string]any {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	out := map[string]any{
		"uptime_sec":    int64(time.Since(ps.started).Seconds()),
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"goroutines":    runtime.NumGoroutine(),
	}
	if ps.proc == nil {
		return out
	}
	if cpu, err := ps.proc.CPUPercent(); err == nil {
		out["cpu_percent"] = cpu
	}
	if mem, err := ps.proc.MemoryInfo(); err == nil {
		out["rss_mb"] = float64(mem.RSS) / 1024 / 1024
	}
	return out
}

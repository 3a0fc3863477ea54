package workers

import (
	"chat-hub/contract"
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// PresenceGauges is the subset of coordinator state worth logging.
type PresenceGauges interface {
	Stats() (online, rooms int)
}

// TelemetryWorker periodically logs presence gauges alongside the process's
// own RSS/CPU. Observability only: losing a tick has no domain effect.
type TelemetryWorker struct {
	log      *slog.Logger
	gauges   PresenceGauges
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, gauges PresenceGauges, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, gauges: gauges, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			online, rooms := w.gauges.Stats()
			rss, cpu := selfStats(p)
			w.log.Info("Presence telemetry",
				"online_users", online,
				"active_rooms", rooms,
				"goroutines", runtime.NumGoroutine(),
				"rss_mb", rss/(1024*1024),
				"cpu_percent", cpu,
			)
		}
	}
}

func selfStats(p *process.Process) (rss uint64, cpu float64) {
	if mem, err := p.MemoryInfo(); err == nil {
		rss = mem.RSS
	}
	if percent, err := p.CPUPercent(); err == nil {
		cpu = percent
	}
	return rss, cpu
}

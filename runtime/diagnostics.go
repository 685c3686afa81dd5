package runtime

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"campus-chat/contract"
)

// DiagnosticsWorker periodically logs the client's own resource usage
// and channel health. Log-only telemetry; nothing leaves the machine.
type DiagnosticsWorker struct {
	log      *slog.Logger
	sender   contract.CommandSender
	interval time.Duration
}

func NewDiagnosticsWorker(log *slog.Logger, sender contract.CommandSender, interval time.Duration) *DiagnosticsWorker {
	return &DiagnosticsWorker{log: log, sender: sender, interval: interval}
}

func (w *DiagnosticsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Debug("Client diagnostics",
				"connected", w.sender.IsConnected(),
				"ram_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}

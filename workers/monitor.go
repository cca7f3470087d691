package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"bbb-pads/etherpad"
	"bbb-pads/mapper"
	"bbb-pads/store"
)

// MonitorWorker periodically logs the size of the hierarchy and the mapper,
// the gateway call counters, and the process footprint.
type MonitorWorker struct {
	log      *slog.Logger
	interval time.Duration
	store    *store.Store
	mapper   *mapper.Mapper
	api      *etherpad.Client
}

func NewMonitorWorker(s *store.Store, m *mapper.Mapper, api *etherpad.Client, interval time.Duration, log *slog.Logger) *MonitorWorker {
	return &MonitorWorker{
		log:      log,
		interval: interval,
		store:    s,
		mapper:   m,
		api:      api,
	}
}

func (w *MonitorWorker) Run(ctx context.Context) error {
	w.log.Info("monitor started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("monitor stopped")
			return nil
		case <-ticker.C:
			w.publish(proc)
		}
	}
}

func (w *MonitorWorker) publish(proc *process.Process) {
	size := w.store.Size()
	users, pads := w.mapper.Size()
	calls, failures := w.api.Stats()

	attrs := []any{
		"meetings", size.Meetings,
		"users", size.Users,
		"groups", size.Groups,
		"pads", size.Pads,
		"sessions", size.Sessions,
		"mappedUsers", users,
		"mappedPads", pads,
		"calls", totals(calls),
		"failures", totals(failures),
	}

	if memory, err := proc.MemoryInfo(); err == nil {
		attrs = append(attrs, "rssBytes", memory.RSS)
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		attrs = append(attrs, "cpuPercent", cpu)
	}

	w.log.Info("monitor", attrs...)
}

func totals(counters map[string]uint64) uint64 {
	var total uint64
	for _, count := range counters {
		total += count
	}
	return total
}

package tools

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/mcp-server-template/internal/registry"
)

// goroutineWarnThreshold marks the runtime as degraded in health reports.
const goroutineWarnThreshold = 10000

// Health provides the health_check tool.
func Health(d *Deps) registry.Provider {
	return registry.NewProvider("tools.health", func(r *registry.Registrar) error {
		return r.Add(registry.Tool("health_check", "Report server status, version and uptime", d.healthCheck).
			WithTitle("Health Check"))
	})
}

func (d *Deps) healthCheck(_ context.Context, _ registry.Args) (registry.Reply, error) {
	counts := make(map[string]int, len(registry.Kinds))
	for _, k := range registry.Kinds {
		counts[string(k)+"s"] = len(d.Registry.List(k))
	}
	return registry.OK(map[string]any{
		"status":         "healthy",
		"server":         d.Config.ServerName,
		"version":        d.Config.ServerVersion,
		"environment":    d.Config.Environment,
		"initialized":    d.Registry.Serving(),
		"uptime_seconds": round(d.Now().Sub(d.Started).Seconds(), 3),
		"capabilities":   counts,
	}, "Server is healthy"), nil
}

// probeTimeout bounds each dependency probe of system_health_check.
const probeTimeout = 2 * time.Second

func (d *Deps) systemHealth(ctx context.Context, _ registry.Args) (registry.Reply, error) {
	var (
		mu     sync.Mutex
		checks = make(map[string]any)
	)
	record := func(name string, v any) {
		mu.Lock()
		checks[name] = v
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		record("runtime", map[string]any{
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
			"num_cpu":    runtime.NumCPU(),
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":     round(float64(m.Alloc)/(1<<20), 2),
				"sys_mb":       round(float64(m.Sys)/(1<<20), 2),
				"heap_objects": m.HeapObjects,
				"num_gc":       m.NumGC,
			},
		})
		return nil
	})
	if store := d.Store(); store != nil {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, probeTimeout)
			defer cancel()
			start := time.Now()
			if err := store.Ping(pctx); err != nil {
				record("kv_store", map[string]any{"status": "unavailable", "error": err.Error()})
				return nil
			}
			record("kv_store", map[string]any{"status": "ok", "latency_ms": time.Since(start).Milliseconds()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return registry.Reply{}, err
	}

	status := "healthy"
	if runtime.NumGoroutine() > goroutineWarnThreshold {
		status = "warning"
	}
	if kvc, ok := checks["kv_store"].(map[string]any); ok && kvc["status"] != "ok" {
		status = "warning"
	}
	checks["status"] = status
	checks["uptime_seconds"] = round(d.Now().Sub(d.Started).Seconds(), 3)

	return registry.Reply{
		Data:     checks,
		Message:  "Health check completed",
		Metadata: map[string]any{"check_time": d.Now().UTC().Format(time.RFC3339)},
	}, nil
}

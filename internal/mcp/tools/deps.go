// Package tools contains the tool providers of the server.
package tools

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/usestring/mcp-server-template/internal/cache"
	"github.com/usestring/mcp-server-template/internal/config"
	"github.com/usestring/mcp-server-template/internal/kv"
	"github.com/usestring/mcp-server-template/internal/query"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config    *config.Config
	Registry  *registry.Registry
	Query     *query.Engine
	Locations *cache.Loader[*time.Location]
	Started   time.Time

	Now    func() time.Time
	Random func() float64 // in [0, 1)
	Sleep  func(context.Context, time.Duration) error

	mu    sync.Mutex
	store kv.Store
}

// NewDeps builds the dependencies shared by the tool providers.
func NewDeps(cfg *config.Config, reg *registry.Registry) (*Deps, error) {
	size := cfg.LocationCacheSize
	if size <= 0 {
		size = 64
	}
	locations, err := cache.NewLoader(size, time.LoadLocation)
	if err != nil {
		return nil, err
	}
	return &Deps{
		Config:    cfg,
		Registry:  reg,
		Query:     query.NewEngine(),
		Locations: locations,
		Started:   time.Now(),
		Now:       time.Now,
		Random:    rand.Float64,
		Sleep:     sleep,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Store returns the key-value store, or nil before the kv provider loads.
func (d *Deps) Store() kv.Store {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store
}

// SetStore installs the key-value store, closing any previous one.
func (d *Deps) SetStore(s kv.Store) error {
	d.mu.Lock()
	prev := d.store
	d.store = s
	d.mu.Unlock()
	if prev != nil && prev != s {
		return prev.Close()
	}
	return nil
}

// Close releases resources held by the providers.
func (d *Deps) Close() error {
	return d.SetStore(nil)
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/usestring/mcp-server-template/internal/kv"
	"github.com/usestring/mcp-server-template/internal/registry"
)

// kvConnectTimeout bounds the connection check made while loading tools.kv.
const kvConnectTimeout = 5 * time.Second

// KV provides key-value tools backed by Redis. Loading fails when REDIS_URL
// is unset or the server is unreachable.
func KV(d *Deps) registry.Provider {
	return registry.NewProvider("tools.kv", func(r *registry.Registrar) error {
		if d.Store() == nil {
			ctx, cancel := context.WithTimeout(context.Background(), kvConnectTimeout)
			defer cancel()
			store, err := kv.NewRedis(ctx, d.Config.RedisURL, d.Config.KVKeyPrefix)
			if err != nil {
				return fmt.Errorf("connecting to key-value store: %w", err)
			}
			if err := d.SetStore(store); err != nil {
				return err
			}
		}
		return kvTools(d, r)
	})
}

// KVWithStore provides the key-value tools over an existing store.
func KVWithStore(d *Deps, store kv.Store) registry.Provider {
	return registry.NewProvider("tools.kv", func(r *registry.Registrar) error {
		if err := d.SetStore(store); err != nil {
			return err
		}
		return kvTools(d, r)
	})
}

func kvTools(d *Deps, r *registry.Registrar) error {
	key := registry.StringParam("key", "Key name").Require()
	return r.Add(
		registry.Tool("kv_set", "Store a value under a key", d.kvSet,
			key,
			registry.StringParam("value", "Value to store").Require(),
			registry.IntegerParam("ttl_seconds", "Expire the key after this many seconds; 0 keeps it").WithDefault(0),
		),
		registry.Tool("kv_get", "Read the value stored under a key", d.kvGet, key),
		registry.Tool("kv_delete", "Delete a key", d.kvDelete, key),
	)
}

func storeError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return registry.NewError(ErrCodeStoreUnavailable, "key-value store unavailable").WithCause(err).WithRetry()
}

// maxTTLSeconds is the largest TTL representable as a time.Duration.
const maxTTLSeconds = int64(math.MaxInt64 / int64(time.Second))

func (d *Deps) kvSet(ctx context.Context, args registry.Args) (registry.Reply, error) {
	if secs := args.Float("ttl_seconds"); secs < 0 || secs > float64(maxTTLSeconds) {
		return registry.Reply{}, registry.ErrInvalidParameter("ttl_seconds", fmt.Sprintf("must be between 0 and %d", maxTTLSeconds))
	}
	ttl := args.Int("ttl_seconds")
	key := args.String("key")
	if err := d.Store().Set(ctx, key, args.String("value"), time.Duration(ttl)*time.Second); err != nil {
		return registry.Reply{}, storeError(err)
	}
	return registry.OK(map[string]any{"key": key, "ttl_seconds": ttl}, "Value stored"), nil
}

func (d *Deps) kvGet(ctx context.Context, args registry.Args) (registry.Reply, error) {
	key := args.String("key")
	v, err := d.Store().Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return registry.Reply{}, registry.Errorf(registry.CodeNotFound, "key not found: %s", key)
	}
	if err != nil {
		return registry.Reply{}, storeError(err)
	}
	return registry.OK(map[string]any{"key": key, "value": v}, "Value retrieved"), nil
}

func (d *Deps) kvDelete(ctx context.Context, args registry.Args) (registry.Reply, error) {
	key := args.String("key")
	existed, err := d.Store().Delete(ctx, key)
	if err != nil {
		return registry.Reply{}, storeError(err)
	}
	return registry.OK(map[string]any{"key": key, "deleted": existed}, "Delete completed"), nil
}

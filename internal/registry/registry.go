package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type key struct {
	kind Kind
	name string
}

type entry struct {
	cap    Capability
	invoke Handler
}

// Registry is the dispatch table from (kind, name) to capability.
//
// It is populated by LoadAll during startup and read concurrently by Invoke
// afterwards. The lock only guards against callers that load while serving.
type Registry struct {
	mu       sync.RWMutex
	table    map[key]*entry
	resolver Resolver
	serving  bool
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver sets how LoadAll turns provider refs into providers.
func WithResolver(res Resolver) Option {
	return func(r *Registry) {
		r.resolver = res
	}
}

// WithClock overrides the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// SetResolver replaces the resolver used by LoadAll. Providers often need
// the registry themselves, so the resolver may be attached after New.
func (r *Registry) SetResolver(res Resolver) {
	r.mu.Lock()
	r.resolver = res
	r.mu.Unlock()
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		table: make(map[key]*entry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadAll resolves and loads each provider ref in order. A provider that
// cannot be resolved, returns an error, panics or declares an invalid
// capability is recorded in the report and skipped; loading continues with
// the next ref. Later registrations replace earlier ones with the same
// (kind, name). When LoadAll returns the registry is serving.
func (r *Registry) LoadAll(ctx context.Context, refs []string) LoadReport {
	report := newLoadReport()
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			report.fail(ref, fmt.Errorf("loading aborted: %w", err))
			continue
		}
		p, err := r.resolve(ref)
		if err != nil {
			slog.Warn("failed to resolve provider",
				slog.String("provider", ref),
				slog.String("error", err.Error()),
			)
			report.fail(ref, err)
			continue
		}
		r.load(ref, p, &report)
	}
	r.finish(report)
	return report
}

// LoadProviders loads provider values directly, in order, with the same
// semantics as LoadAll. Each provider is reported under its Name.
func (r *Registry) LoadProviders(ctx context.Context, providers ...Provider) LoadReport {
	report := newLoadReport()
	for _, p := range providers {
		ref := p.Name()
		if err := ctx.Err(); err != nil {
			report.fail(ref, fmt.Errorf("loading aborted: %w", err))
			continue
		}
		r.load(ref, p, &report)
	}
	r.finish(report)
	return report
}

func (r *Registry) resolve(ref string) (Provider, error) {
	if r.resolver == nil {
		return nil, fmt.Errorf("no resolver configured for provider %q", ref)
	}
	p, err := r.resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("provider %q resolved to nil", ref)
	}
	return p, nil
}

func (r *Registry) load(ref string, p Provider, report *LoadReport) {
	slog.Debug("loading provider", slog.String("provider", ref))

	reg := &Registrar{provider: ref}
	if err := register(p, reg); err != nil {
		slog.Warn("failed to load provider",
			slog.String("provider", ref),
			slog.String("error", err.Error()),
		)
		report.fail(ref, err)
		return
	}

	counts := make(map[Kind]int, len(Kinds))
	r.mu.Lock()
	for _, c := range reg.staged {
		k := key{kind: c.Kind, name: c.Name}
		if prev, ok := r.table[k]; ok {
			report.Overwritten++
			slog.Debug("capability overwritten",
				slog.String("kind", string(c.Kind)),
				slog.String("name", c.Name),
				slog.String("previous_provider", prev.cap.Provider),
				slog.String("provider", ref),
			)
		}
		r.table[k] = &entry{cap: c, invoke: pipeline(c)}
		counts[c.Kind]++
		report.Counts[c.Kind]++
	}
	r.mu.Unlock()

	report.Loaded = append(report.Loaded, ProviderLoad{Ref: ref, Counts: counts})
	slog.Debug("provider loaded",
		slog.String("provider", ref),
		slog.Int("capabilities", len(reg.staged)),
	)
}

// register runs the provider's registration, converting panics and invalid
// declarations into errors.
func register(p Provider, reg *Registrar) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("provider panicked: %v", v)
			slog.Debug("provider panic stack", slog.String("stack", string(debug.Stack())))
		}
	}()
	if err := p.Register(reg); err != nil {
		return err
	}
	return errors.Join(reg.errs...)
}

func (r *Registry) finish(report LoadReport) {
	r.mu.Lock()
	r.serving = true
	r.mu.Unlock()

	attrs := []any{
		slog.Int("loaded", len(report.Loaded)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("overwritten", report.Overwritten),
	}
	for _, k := range Kinds {
		attrs = append(attrs, slog.Int(string(k)+"s", report.Counts[k]))
	}
	slog.Info("capability providers loaded", attrs...)
}

// Serving reports whether a load pass has completed.
func (r *Registry) Serving() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.serving
}

func (r *Registry) lookup(kind Kind, name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.table[key{kind: kind, name: name}]
	return e, ok
}

// Lookup returns the capability registered under (kind, name).
func (r *Registry) Lookup(kind Kind, name string) (Capability, bool) {
	e, ok := r.lookup(kind, name)
	if !ok {
		return Capability{}, false
	}
	return e.cap, true
}

// List returns the capabilities of a kind sorted by name.
func (r *Registry) List(kind Kind) []Capability {
	r.mu.RLock()
	caps := make([]Capability, 0, len(r.table))
	for k, e := range r.table {
		if k.kind == kind {
			caps = append(caps, e.cap)
		}
	}
	r.mu.RUnlock()

	sort.Slice(caps, func(i, j int) bool { return caps[i].Name < caps[j].Name })
	return caps
}

// Len returns the number of entries in the dispatch table.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table)
}

// Invoke runs the capability registered under (kind, name) with params and
// returns its result. It never panics and never returns a Go error: lookup,
// validation, application and unexpected failures all become failure results.
func (r *Registry) Invoke(ctx context.Context, kind Kind, name string, params map[string]any) Result {
	start := r.now()
	id := uuid.NewString()

	e, ok := r.lookup(kind, name)
	if !ok {
		return r.failure(id, start, ErrNotFound(kind, name))
	}
	if params == nil {
		params = map[string]any{}
	}

	reply, err := e.invoke(ctx, Args(params))
	if err != nil {
		coded := classify(err)
		if coded.Code == CodeInternal {
			attrs := []any{
				slog.String("invocation_id", id),
				slog.String("kind", string(kind)),
				slog.String("name", name),
				slog.String("error", err.Error()),
			}
			var pe *panicError
			if errors.As(err, &pe) {
				attrs = append(attrs, slog.String("stack", string(pe.stack)))
			}
			slog.Error("capability failed with unexpected error", attrs...)
		} else {
			slog.Debug("capability failed",
				slog.String("invocation_id", id),
				slog.String("kind", string(kind)),
				slog.String("name", name),
				slog.String("code", coded.Code),
				slog.String("message", coded.Message),
			)
		}
		return r.failure(id, start, coded)
	}

	end := r.now()
	slog.Debug("capability invoked",
		slog.String("invocation_id", id),
		slog.String("kind", string(kind)),
		slog.String("name", name),
		slog.Int64("duration_ms", end.Sub(start).Milliseconds()),
	)
	return Result{
		Success:      true,
		Data:         reply.Data,
		Message:      reply.Message,
		Metadata:     reply.Metadata,
		Timestamp:    end.UTC(),
		DurationMs:   end.Sub(start).Milliseconds(),
		InvocationID: id,
	}
}

func (r *Registry) failure(id string, start time.Time, err *CodedError) Result {
	end := r.now()
	return Result{
		Error:        err.Message,
		ErrorCode:    err.Code,
		Field:        err.Field,
		Retryable:    err.Retryable,
		Details:      err.Details,
		Timestamp:    end.UTC(),
		DurationMs:   end.Sub(start).Milliseconds(),
		InvocationID: id,
	}
}

// classify turns an invocation error into a coded error. Details of
// unclassified errors stay in the logs.
func classify(err error) *CodedError {
	if coded, ok := AsCodedError(err); ok {
		return coded
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(CodeTimeout, "deadline exceeded").WithRetry()
	case errors.Is(err, context.Canceled):
		return NewError(CodeCanceled, "invocation canceled")
	}
	return NewError(CodeInternal, "internal error")
}

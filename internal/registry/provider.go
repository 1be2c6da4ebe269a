package registry

import (
	"errors"
	"fmt"
	"sort"
)

// Provider contributes capabilities to a registry when loaded.
type Provider interface {
	// Name identifies the provider in logs and load reports.
	Name() string
	// Register declares the provider's capabilities.
	Register(r *Registrar) error
}

type funcProvider struct {
	name     string
	register func(*Registrar) error
}

func (p funcProvider) Name() string                { return p.name }
func (p funcProvider) Register(r *Registrar) error { return p.register(r) }

// NewProvider adapts a registration function to a Provider.
func NewProvider(name string, register func(*Registrar) error) Provider {
	return funcProvider{name: name, register: register}
}

// Registrar collects the capabilities of one provider during loading. They
// reach the dispatch table only if the whole provider loads successfully.
type Registrar struct {
	provider string
	staged   []Capability
	errs     []error
}

// Add declares capabilities. Invalid declarations are rejected and fail the
// provider even if the returned error is ignored.
func (r *Registrar) Add(caps ...Capability) error {
	var errs []error
	for _, c := range caps {
		if err := c.check(); err != nil {
			errs = append(errs, err)
			continue
		}
		c.Provider = r.provider
		r.staged = append(r.staged, c)
	}
	err := errors.Join(errs...)
	if err != nil {
		r.errs = append(r.errs, err)
	}
	return err
}

// Provider returns the ref of the provider being loaded.
func (r *Registrar) Provider() string {
	return r.provider
}

// Resolver maps a provider reference to a provider.
type Resolver interface {
	Resolve(ref string) (Provider, error)
}

// Catalog is a Resolver backed by a fixed set of provider constructors.
type Catalog map[string]func() (Provider, error)

// Resolve implements Resolver.
func (c Catalog) Resolve(ref string) (Provider, error) {
	build, ok := c[ref]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", ref)
	}
	return build()
}

// Refs returns the catalog's references in sorted order.
func (c Catalog) Refs() []string {
	refs := make([]string, 0, len(c))
	for ref := range c {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// LoadReport summarizes a LoadAll pass.
type LoadReport struct {
	// Counts is the number of capabilities registered per kind, summed over
	// every provider that loaded.
	Counts map[Kind]int `json:"counts"`

	Loaded []ProviderLoad    `json:"loaded"`
	Failed []ProviderFailure `json:"failed,omitempty"`

	// Overwritten counts registrations that replaced an existing (kind, name).
	Overwritten int `json:"overwritten"`
}

// ProviderLoad records a provider that loaded.
type ProviderLoad struct {
	Ref    string       `json:"ref"`
	Counts map[Kind]int `json:"counts"`
}

// ProviderFailure records a provider that failed to load.
type ProviderFailure struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

func newLoadReport() LoadReport {
	return LoadReport{Counts: make(map[Kind]int, len(Kinds))}
}

// Total returns the number of capabilities registered across all kinds.
func (r LoadReport) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// OK reports whether every provider loaded.
func (r LoadReport) OK() bool {
	return len(r.Failed) == 0
}

func (r *LoadReport) fail(ref string, err error) {
	r.Failed = append(r.Failed, ProviderFailure{Ref: ref, Message: err.Error()})
}

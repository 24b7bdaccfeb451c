// Package datasource keeps the live state of each dashboard domain and
// decides whether it shows fixture data or data fetched from GitHub and npm.
//
// Every domain starts on its fixture ("mock"). Fetch moves it to "api" when
// every remote call succeeds, and back to a fresh fixture with an error
// message when any of them fails, so a domain is never left without data.
package datasource

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"design-system-api/internal/logging"
	"design-system-api/internal/metrics"
)

// Source tells where a domain's current data came from.
type Source string

const (
	SourceMock Source = "mock"
	SourceAPI  Source = "api"
)

var (
	// ErrNotFound is returned by mutations that name an unknown item.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned by mutations given unusable input.
	ErrInvalid = errors.New("invalid input")
)

var now = time.Now

// State is a point-in-time view of a domain.
type State[T any] struct {
	Data    T      `json:"data"`
	Source  Source `json:"dataSource"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Event describes a completed transition.
type Event struct {
	Domain string `json:"domain"`
	Source Source `json:"source"`
	Error  string `json:"error,omitempty"`
}

// Notifier is told about every transition that completes a fetch or reset.
type Notifier interface {
	DataSourceChanged(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) DataSourceChanged(e Event) { f(e) }

// Config describes one domain.
type Config[T any] struct {
	Name string
	// Fixture returns a new copy of the default data on every call.
	Fixture func() T
	// Load fetches and normalizes live data. Any error means the whole
	// fetch failed. Nil marks a local-only domain.
	Load func(ctx context.Context) (T, error)
	// Invalidate drops the cached remote responses Load relies on.
	Invalidate func()
	// Overlay applies persisted user changes. It must not modify its
	// argument in place when that is shared; it receives an owned copy.
	Overlay func(T) T
	// Clone deep-copies data handed out by Snapshot.
	Clone func(T) T

	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Notifier Notifier
}

// Domain holds the state of one domain. Fetches are single-flight: callers
// arriving while a fetch is running wait for and share its result.
type Domain[T any] struct {
	cfg    Config[T]
	logger *slog.Logger
	flight singleflight.Group

	mu    sync.RWMutex
	state State[T]
	// generation is bumped by Reset and Refresh so that a fetch started
	// before them cannot overwrite their outcome.
	generation uint64
}

// NewDomain builds a domain in its initial mock state.
func NewDomain[T any](cfg Config[T]) *Domain[T] {
	if cfg.Clone == nil {
		cfg.Clone = func(v T) T { return v }
	}
	if cfg.Overlay == nil {
		cfg.Overlay = func(v T) T { return v }
	}
	d := &Domain[T]{
		cfg:    cfg,
		logger: logging.Component(cfg.Logger, "datasource").With("domain", cfg.Name),
	}
	d.state = State[T]{Data: d.fixture(), Source: SourceMock}
	return d
}

// Name returns the domain name.
func (d *Domain[T]) Name() string { return d.cfg.Name }

func (d *Domain[T]) fixture() T {
	return d.cfg.Overlay(d.cfg.Fixture())
}

// Snapshot returns a copy of the current state.
func (d *Domain[T]) Snapshot() State[T] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := d.state
	s.Data = d.cfg.Clone(s.Data)
	return s
}

// Fetch loads live data and returns the resulting state. The fetch itself
// is detached from ctx: if ctx ends first, Fetch returns the current
// (loading) state while the fetch runs to completion in the background.
//
// A domain without a Load function holds local data only; Fetch returns its
// current state.
func (d *Domain[T]) Fetch(ctx context.Context) State[T] {
	if d.cfg.Load == nil {
		return d.Snapshot()
	}
	d.mu.RLock()
	gen := d.generation
	d.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	ch := d.flight.DoChan(d.cfg.Name, func() (any, error) {
		d.run(detached, gen)
		return nil, nil
	})
	select {
	case <-ch:
	case <-ctx.Done():
	}
	return d.Snapshot()
}

func (d *Domain[T]) run(ctx context.Context, gen uint64) {
	d.mu.Lock()
	if d.generation == gen {
		d.state.Loading = true
	}
	d.mu.Unlock()

	start := time.Now()
	data, err := d.cfg.Load(ctx)
	d.cfg.Metrics.ObserveFetch(d.cfg.Name, time.Since(start))

	d.mu.Lock()
	if d.generation != gen {
		d.mu.Unlock()
		d.logger.Debug("discarding superseded fetch result")
		return
	}
	// Overlays read persisted user changes, so they are applied under the
	// lock that mutations also hold.
	var next State[T]
	if err != nil {
		d.logger.Warn("fetch failed, using fixture data", "error", err)
		next = State[T]{Data: d.fixture(), Source: SourceMock, Error: err.Error()}
	} else {
		next = State[T]{Data: d.cfg.Overlay(data), Source: SourceAPI}
	}
	d.state = next
	d.mu.Unlock()
	d.transitioned(next)
}

// Reset returns the domain to fixture data and clears any error.
func (d *Domain[T]) Reset() State[T] {
	d.mu.Lock()
	d.generation++
	next := State[T]{Data: d.fixture(), Source: SourceMock}
	d.state = next
	d.mu.Unlock()
	// A later Fetch must start a new flight rather than join the one
	// this reset superseded.
	d.flight.Forget(d.cfg.Name)
	d.transitioned(next)
	return d.Snapshot()
}

// Refresh drops the domain's cached responses and fetches again. A fetch
// already running is superseded rather than joined.
func (d *Domain[T]) Refresh(ctx context.Context) State[T] {
	if d.cfg.Invalidate != nil {
		d.cfg.Invalidate()
	}
	d.mu.Lock()
	d.generation++
	d.mu.Unlock()
	d.flight.Forget(d.cfg.Name)
	return d.Fetch(ctx)
}

// Update replaces the data with fn's result. fn receives a private copy and
// runs under the domain lock, so it must not call back into the domain.
// An error from fn leaves the state untouched.
func (d *Domain[T]) Update(fn func(T) (T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := fn(d.cfg.Clone(d.state.Data))
	if err != nil {
		return err
	}
	d.state.Data = data
	return nil
}

func (d *Domain[T]) transitioned(s State[T]) {
	d.cfg.Metrics.Transition(d.cfg.Name, string(s.Source))
	d.logger.Info("data source changed", "source", s.Source, "error", s.Error)
	if d.cfg.Notifier != nil {
		d.cfg.Notifier.DataSourceChanged(Event{Domain: d.cfg.Name, Source: s.Source, Error: s.Error})
	}
}

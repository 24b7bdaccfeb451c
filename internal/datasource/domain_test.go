package datasource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) DataSourceChanged(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func counterDomain(load func(ctx context.Context) ([]int, error), n Notifier) *Domain[[]int] {
	return NewDomain(Config[[]int]{
		Name:     "numbers",
		Fixture:  func() []int { return []int{1, 2, 3} },
		Load:     load,
		Clone:    func(v []int) []int { return append([]int(nil), v...) },
		Notifier: n,
	})
}

func TestDomain_StartsOnFixture(t *testing.T) {
	d := counterDomain(nil, nil)
	s := d.Snapshot()
	assert.Equal(t, State[[]int]{Data: []int{1, 2, 3}, Source: SourceMock}, s)
}

func TestDomain_FetchSuccessAndFailure(t *testing.T) {
	var fail atomic.Bool
	rec := &recorder{}
	d := counterDomain(func(ctx context.Context) ([]int, error) {
		if fail.Load() {
			return []int{99}, errors.New("GitHub API error: 500 Internal Server Error")
		}
		return []int{7}, nil
	}, rec)

	s := d.Fetch(context.Background())
	assert.Equal(t, State[[]int]{Data: []int{7}, Source: SourceAPI}, s)

	fail.Store(true)
	s = d.Fetch(context.Background())
	assert.Equal(t, SourceMock, s.Source)
	assert.Equal(t, []int{1, 2, 3}, s.Data)
	assert.Equal(t, "GitHub API error: 500 Internal Server Error", s.Error)
	assert.False(t, s.Loading)

	assert.Equal(t, []Event{
		{Domain: "numbers", Source: SourceAPI},
		{Domain: "numbers", Source: SourceMock, Error: "GitHub API error: 500 Internal Server Error"},
	}, rec.all())
}

func TestDomain_SnapshotIsACopy(t *testing.T) {
	d := counterDomain(nil, nil)
	s := d.Snapshot()
	s.Data[0] = 100
	assert.Equal(t, 1, d.Snapshot().Data[0])
}

func TestDomain_SingleFlight(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	d := counterDomain(func(ctx context.Context) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []int{42}, nil
	}, nil)

	var wg sync.WaitGroup
	results := make([]State[[]int], 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Fetch(context.Background())
		}(i)
	}
	require.Eventually(t, func() bool { return d.Snapshot().Loading }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, SourceAPI, r.Source)
		assert.Equal(t, []int{42}, r.Data)
	}
}

func TestDomain_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	release := make(chan struct{})
	var loadCtxErr atomic.Value
	d := counterDomain(func(ctx context.Context) ([]int, error) {
		<-release
		loadCtxErr.Store(ctx.Err() == nil)
		return []int{5}, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State[[]int])
	go func() { done <- d.Fetch(ctx) }()
	require.Eventually(t, func() bool { return d.Snapshot().Loading }, time.Second, time.Millisecond)
	cancel()

	s := <-done
	assert.True(t, s.Loading)
	assert.Equal(t, SourceMock, s.Source)

	close(release)
	require.Eventually(t, func() bool { return d.Snapshot().Source == SourceAPI }, time.Second, time.Millisecond)
	assert.Equal(t, true, loadCtxErr.Load())
}

func TestDomain_Reset(t *testing.T) {
	d := counterDomain(func(ctx context.Context) ([]int, error) { return []int{7}, nil }, nil)
	d.Fetch(context.Background())

	s := d.Reset()
	assert.Equal(t, State[[]int]{Data: []int{1, 2, 3}, Source: SourceMock}, s)
}

func TestDomain_ResetSupersedesRunningFetch(t *testing.T) {
	release := make(chan struct{})
	d := counterDomain(func(ctx context.Context) ([]int, error) {
		<-release
		return []int{7}, nil
	}, nil)

	done := make(chan struct{})
	go func() {
		d.Fetch(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return d.Snapshot().Loading }, time.Second, time.Millisecond)

	d.Reset()
	close(release)
	<-done
	assert.Equal(t, State[[]int]{Data: []int{1, 2, 3}, Source: SourceMock}, d.Snapshot())
}

func TestDomain_FetchAfterResetStartsNewFlight(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	d := counterDomain(func(ctx context.Context) ([]int, error) {
		if calls.Add(1) == 1 {
			<-release
			return []int{7}, nil
		}
		return []int{8}, nil
	}, nil)

	done := make(chan struct{})
	go func() {
		d.Fetch(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return d.Snapshot().Loading }, time.Second, time.Millisecond)

	d.Reset()
	s := d.Fetch(context.Background())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, State[[]int]{Data: []int{8}, Source: SourceAPI}, s)

	close(release)
	<-done
	assert.Equal(t, State[[]int]{Data: []int{8}, Source: SourceAPI}, d.Snapshot())
}

func TestDomain_OverlayRunsUnderLock(t *testing.T) {
	var (
		d       *Domain[[]int]
		checked atomic.Bool
		held    atomic.Bool
	)
	d = NewDomain(Config[[]int]{
		Name:    "numbers",
		Fixture: func() []int { return []int{1} },
		Load:    func(ctx context.Context) ([]int, error) { return []int{9}, nil },
		Overlay: func(v []int) []int {
			if len(v) == 1 && v[0] == 9 {
				checked.Store(true)
				if d.mu.TryLock() {
					d.mu.Unlock()
				} else {
					held.Store(true)
				}
			}
			return v
		},
	})

	d.Fetch(context.Background())
	require.True(t, checked.Load())
	assert.True(t, held.Load())
}

func TestDomain_LocalOnlyFetchReturnsState(t *testing.T) {
	d := counterDomain(nil, nil)
	require.NoError(t, d.Update(func(v []int) ([]int, error) { return append(v, 4), nil }))

	s := d.Fetch(context.Background())
	assert.Equal(t, State[[]int]{Data: []int{1, 2, 3, 4}, Source: SourceMock}, s)
	assert.Equal(t, s, d.Refresh(context.Background()))
}

func TestDomain_RefreshInvalidatesThenFetches(t *testing.T) {
	var order []string
	d := NewDomain(Config[[]int]{
		Name:    "numbers",
		Fixture: func() []int { return nil },
		Load: func(ctx context.Context) ([]int, error) {
			order = append(order, "load")
			return []int{1}, nil
		},
		Invalidate: func() { order = append(order, "invalidate") },
	})

	s := d.Refresh(context.Background())
	assert.Equal(t, SourceAPI, s.Source)
	assert.Equal(t, []string{"invalidate", "load"}, order)
}

func TestDomain_UpdateError(t *testing.T) {
	d := counterDomain(nil, nil)
	err := d.Update(func(v []int) ([]int, error) {
		v[0] = 100
		return v, ErrNotFound
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []int{1, 2, 3}, d.Snapshot().Data)

	require.NoError(t, d.Update(func(v []int) ([]int, error) { return append(v, 4), nil }))
	assert.Equal(t, []int{1, 2, 3, 4}, d.Snapshot().Data)
}

func TestNotifierFunc(t *testing.T) {
	var got Event
	NotifierFunc(func(e Event) { got = e }).DataSourceChanged(Event{Domain: "audit"})
	assert.Equal(t, "audit", got.Domain)
}

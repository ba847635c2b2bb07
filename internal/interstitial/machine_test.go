package interstitial

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	snap Snapshot
	err  error
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func start(t *testing.T, m *Machine) <-chan result {
	t.Helper()
	out := make(chan result, 1)
	go func() {
		snap, err := m.Run(context.Background())
		out <- result{snap, err}
	}()
	return out
}

func waitFor(t *testing.T, m *Machine, state State, remaining int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := m.Snapshot()
		return s.State == state && s.Remaining == remaining
	}, time.Second, time.Millisecond)
}

func TestConfirmCountsDownThenNavigates(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	m := New("https://example.com", "/", WithClock(mock), WithObserver(rec.observe))
	done := start(t, m)

	assert.Equal(t, Idle, m.State())
	m.Confirm()

	for remaining := 3; remaining >= 0; remaining-- {
		waitFor(t, m, CountingDown, remaining)
		mock.Add(time.Second)
	}
	waitFor(t, m, Splash, 0)

	mock.Add(899 * time.Millisecond)
	assert.Equal(t, Splash, m.State())
	mock.Add(time.Millisecond)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, Navigated, res.snap.State)
	assert.Equal(t, "https://example.com", res.snap.Target)

	var states []State
	for _, s := range rec.all() {
		states = append(states, s.State)
	}
	assert.Equal(t, []State{CountingDown, CountingDown, CountingDown, CountingDown, Splash, Navigated}, states)
}

func TestDeclineNavigatesHome(t *testing.T) {
	m := New("https://example.com", "/", WithClock(clock.NewMock()))
	done := start(t, m)

	m.Decline()

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, Navigated, res.snap.State)
	assert.Equal(t, "/", res.snap.Target)
}

func TestDeclineIgnoredOnceCountingDown(t *testing.T) {
	mock := clock.NewMock()
	m := New("https://example.com", "/", WithClock(mock))
	done := start(t, m)

	m.Confirm()
	waitFor(t, m, CountingDown, 3)
	m.Decline()
	m.Confirm()
	mock.Add(time.Second)
	waitFor(t, m, CountingDown, 2)

	m.Close()
	res := <-done
	assert.ErrorIs(t, res.err, ErrClosed)
}

func TestCloseCancelsPendingNavigation(t *testing.T) {
	mock := clock.NewMock()
	var mu sync.Mutex
	navigated := false
	m := New("https://example.com", "/", WithClock(mock), WithObserver(func(s Snapshot) {
		if s.State == Navigated {
			mu.Lock()
			navigated = true
			mu.Unlock()
		}
	}))
	done := start(t, m)

	m.Confirm()
	for remaining := 3; remaining >= 0; remaining-- {
		waitFor(t, m, CountingDown, remaining)
		mock.Add(time.Second)
	}
	waitFor(t, m, Splash, 0)

	m.Close()
	res := <-done
	assert.ErrorIs(t, res.err, ErrClosed)

	mock.Add(10 * time.Second)
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, navigated)
	assert.Equal(t, Splash, m.State())
}

// 闪屏计时已触发、事件已入队时关闭，仍然不能跳转
func TestCloseWinsOverQueuedSplashEvent(t *testing.T) {
	timings := Timings{CountdownFrom: 0, Tick: time.Second, SplashDelay: 900 * time.Millisecond}

	for i := 0; i < 50; i++ {
		mock := clock.NewMock()
		inSplash := make(chan struct{})
		release := make(chan struct{})
		m := New("https://example.com", "/", WithClock(mock), WithTimings(timings), WithObserver(func(s Snapshot) {
			if s.State == Splash {
				close(inSplash)
				<-release
			}
		}))
		done := start(t, m)

		m.Confirm()
		waitFor(t, m, CountingDown, 0)
		mock.Add(time.Second)
		<-inSplash

		mock.Add(900 * time.Millisecond)
		require.Eventually(t, func() bool {
			return len(m.inputs) == 1
		}, time.Second, time.Millisecond)

		m.Close()
		close(release)

		res := <-done
		require.ErrorIs(t, res.err, ErrClosed)
		require.Equal(t, Splash, m.State())
		require.Empty(t, res.snap.Target)
	}
}

func TestContextCancellationStopsMachine(t *testing.T) {
	mock := clock.NewMock()
	m := New("https://example.com", "/", WithClock(mock))
	ctx, cancel := context.WithCancel(context.Background())

	out := make(chan error, 1)
	go func() {
		_, err := m.Run(ctx)
		out <- err
	}()

	m.Confirm()
	waitFor(t, m, CountingDown, 3)
	cancel()

	assert.ErrorIs(t, <-out, context.Canceled)

	// 关闭后再投递事件不能阻塞
	m.Confirm()
	m.Decline()
}

func TestRunTwice(t *testing.T) {
	m := New("https://example.com", "/", WithClock(clock.NewMock()))
	done := start(t, m)

	require.Eventually(t, func() bool { return m.running.Load() }, time.Second, time.Millisecond)
	_, err := m.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunning)

	m.Close()
	<-done
}

func TestCustomTimings(t *testing.T) {
	mock := clock.NewMock()
	m := New("https://example.com", "/", WithClock(mock), WithTimings(Timings{
		CountdownFrom: 0,
		Tick:          100 * time.Millisecond,
		SplashDelay:   50 * time.Millisecond,
	}))
	done := start(t, m)

	m.Confirm()
	waitFor(t, m, CountingDown, 0)
	mock.Add(100 * time.Millisecond)
	waitFor(t, m, Splash, 0)
	mock.Add(50 * time.Millisecond)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "https://example.com", res.snap.Target)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "counting_down", CountingDown.String())
	assert.Equal(t, "splash", Splash.String())
	assert.Equal(t, "navigated", Navigated.String())
}

// Package interstitial 跳转前的确认流程：用户确认、倒计时、过渡页，最后跳转
package interstitial

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	ErrClosed  = errors.New("interstitial: machine closed")
	ErrRunning = errors.New("interstitial: machine already running")
)

type State int32

const (
	Idle State = iota
	CountingDown
	Splash
	Navigated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CountingDown:
		return "counting_down"
	case Splash:
		return "splash"
	case Navigated:
		return "navigated"
	default:
		return "unknown"
	}
}

// Timings 倒计时参数，确认页模板使用同一组数值
type Timings struct {
	CountdownFrom int
	Tick          time.Duration
	SplashDelay   time.Duration
}

var DefaultTimings = Timings{
	CountdownFrom: 3,
	Tick:          time.Second,
	SplashDelay:   900 * time.Millisecond,
}

// Snapshot 每次状态变更后的快照
type Snapshot struct {
	State     State
	Remaining int
	// 进入 Navigated 后才有值
	Target string
}

type inputKind int

const (
	inputConfirm inputKind = iota
	inputDecline
	inputTick
	inputSplashElapsed
)

type input struct {
	kind inputKind
	gen  uint64
}

type Option func(*Machine)

func WithClock(c clock.Clock) Option {
	return func(m *Machine) {
		m.clock = c
	}
}

func WithTimings(t Timings) Option {
	return func(m *Machine) {
		m.timings = t
	}
}

// WithObserver 每次状态变更后在状态机协程里回调
func WithObserver(f func(Snapshot)) Option {
	return func(m *Machine) {
		m.observer = f
	}
}

// Machine 一次性状态机，所有状态变更都在 Run 所在协程完成，其他方法只投递事件
type Machine struct {
	destination string
	home        string
	clock       clock.Clock
	timings     Timings
	observer    func(Snapshot)

	inputs    chan input
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	doneOnce  sync.Once
	running   atomic.Bool
	state     atomic.Int32

	mu       sync.Mutex
	snapshot Snapshot
	closed   bool

	// 仅 Run 协程访问
	remaining int
	gen       uint64
	timer     *clock.Timer
}

// New 创建状态机：确认后跳到 destination，拒绝则回到 home
func New(destination, home string, opts ...Option) *Machine {
	m := &Machine{
		destination: destination,
		home:        home,
		clock:       clock.New(),
		timings:     DefaultTimings,
		inputs:      make(chan input, 16),
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Confirm 开始倒计时，仅在 Idle 状态生效
func (m *Machine) Confirm() {
	m.post(input{kind: inputConfirm})
}

// Decline 返回首页，仅在 Idle 状态生效
func (m *Machine) Decline() {
	m.post(input{kind: inputDecline})
}

// Close 销毁状态机，取消未触发的定时器，返回后不会再发生跳转
func (m *Machine) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		close(m.closing)
	})
}

func (m *Machine) State() State {
	return State(m.state.Load())
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Run 处理事件直到跳转、关闭或 ctx 结束，返回最终快照；只有发生跳转时 error 为 nil
func (m *Machine) Run(ctx context.Context) (Snapshot, error) {
	if !m.running.CompareAndSwap(false, true) {
		return m.Snapshot(), ErrRunning
	}
	defer m.stop()

	for {
		select {
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		case <-m.closing:
			return m.Snapshot(), ErrClosed
		case in := <-m.inputs:
			select {
			case <-m.closing:
				return m.Snapshot(), ErrClosed
			case <-ctx.Done():
				return m.Snapshot(), ctx.Err()
			default:
			}
			if m.handle(in) {
				return m.Snapshot(), nil
			}
		}
	}
}

// handle 处理一个事件，返回是否已跳转
func (m *Machine) handle(in input) bool {
	switch in.kind {
	case inputConfirm:
		if m.State() != Idle {
			return false
		}
		m.remaining = m.timings.CountdownFrom
		m.schedule(m.timings.Tick, inputTick)
		m.publish(CountingDown, "")

	case inputDecline:
		if m.State() != Idle {
			return false
		}
		return m.navigate(m.home)

	case inputTick:
		if in.gen != m.gen || m.State() != CountingDown {
			return false
		}
		m.remaining--
		if m.remaining < 0 {
			m.remaining = 0
			m.schedule(m.timings.SplashDelay, inputSplashElapsed)
			m.publish(Splash, "")
			return false
		}
		m.schedule(m.timings.Tick, inputTick)
		m.publish(CountingDown, "")

	case inputSplashElapsed:
		if in.gen != m.gen || m.State() != Splash {
			return false
		}
		return m.navigate(m.destination)
	}
	return false
}

// schedule 替换当前定时器，代号 gen 让取消后才触发的回调失效
func (m *Machine) schedule(d time.Duration, kind inputKind) {
	m.cancelTimer()
	gen := m.gen
	m.timer = m.clock.AfterFunc(d, func() {
		m.post(input{kind: kind, gen: gen})
	})
}

func (m *Machine) cancelTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

func (m *Machine) publish(state State, target string) {
	snap := Snapshot{State: state, Remaining: m.remaining, Target: target}
	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()
	m.state.Store(int32(state))
	if m.observer != nil {
		m.observer(snap)
	}
}

// navigate 在 Close 之后拒绝跳转，判断与状态写入在同一把锁内完成
func (m *Machine) navigate(target string) bool {
	snap := Snapshot{State: Navigated, Remaining: m.remaining, Target: target}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.snapshot = snap
	m.state.Store(int32(Navigated))
	m.mu.Unlock()
	if m.observer != nil {
		m.observer(snap)
	}
	return true
}

func (m *Machine) post(in input) {
	select {
	case m.inputs <- in:
	case <-m.done:
	}
}

func (m *Machine) stop() {
	m.cancelTimer()
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

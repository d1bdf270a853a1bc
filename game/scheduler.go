package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"snake-torus/game/types"
	"snake-torus/input"
)

// ErrStopped is returned by Invoke and Press once Run has returned.
var ErrStopped = errors.New("scheduler stopped")

// ExpiryMode selects how food leaves the board when nobody eats it.
type ExpiryMode int

const (
	// ExpiryDeadline removes every item exactly one lifetime after it
	// spawned, driven by a timer aimed at the soonest deadline.
	ExpiryDeadline ExpiryMode = iota
	// ExpirySweep removes the oldest item on a fixed period, ignoring
	// individual deadlines.
	ExpirySweep
)

func (m ExpiryMode) String() string {
	if m == ExpirySweep {
		return "sweep"
	}
	return "deadline"
}

// ParseExpiryMode accepts "deadline" or "sweep".
func ParseExpiryMode(s string) (ExpiryMode, error) {
	switch s {
	case "deadline", "":
		return ExpiryDeadline, nil
	case "sweep":
		return ExpirySweep, nil
	default:
		return ExpiryDeadline, fmt.Errorf("unknown expiry mode %q", s)
	}
}

// Timing holds the periods of the three game timers.
type Timing struct {
	Move   time.Duration
	Spawn  time.Duration
	Sweep  time.Duration
	Expiry ExpiryMode
}

func DefaultTiming() Timing {
	return Timing{
		Move:   types.MoveInterval,
		Spawn:  types.SpawnInterval,
		Sweep:  types.SweepInterval,
		Expiry: ExpiryDeadline,
	}
}

// SchedulerConfig wires a Scheduler to its collaborators.
type SchedulerConfig struct {
	Clock   Clock
	Timing  Timing
	Sources []input.Source
	Logger  *log.Logger
}

type call struct {
	fn   func(g *Game, now time.Time)
	done chan struct{}
}

// Scheduler drives a Game from one goroutine. Timer fires, key presses
// and invoked calls each run to completion before the next is taken.
type Scheduler struct {
	game    *Game
	clock   Clock
	timing  Timing
	sources []input.Source
	logger  *log.Logger

	keys    chan input.Key
	calls   chan call
	stopped chan struct{}
	once    sync.Once
}

func NewScheduler(g *Game, cfg SchedulerConfig) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.Timing == (Timing{}) {
		cfg.Timing = DefaultTiming()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Scheduler{
		game:    g,
		clock:   cfg.Clock,
		timing:  cfg.Timing,
		sources: cfg.Sources,
		logger:  cfg.Logger,
		keys:    make(chan input.Key, 16),
		calls:   make(chan call),
		stopped: make(chan struct{}),
	}
}

func (s *Scheduler) Game() *Game {
	return s.game
}

// Press queues a key press for the loop.
func (s *Scheduler) Press(ctx context.Context, k input.Key) error {
	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}
	select {
	case s.keys <- k:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPress queues a key press without blocking. It is safe to call from
// a Listener.
func (s *Scheduler) TryPress(k input.Key) bool {
	select {
	case s.keys <- k:
		return true
	default:
		return false
	}
}

// Invoke runs fn on the loop goroutine and waits for it to finish.
func (s *Scheduler) Invoke(ctx context.Context, fn func(g *Game, now time.Time)) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case s.calls <- c:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the timers, subscribes the input sources and processes
// events until ctx is cancelled or a quit key arrives. Every timer and
// source is released before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		s.once.Do(func() { close(s.stopped) })
	}()

	for _, src := range s.sources {
		wg.Add(1)
		go func(keys <-chan input.Key) {
			defer wg.Done()
			for k := range keys {
				select {
				case s.keys <- k:
				case <-ctx.Done():
					return
				}
			}
		}(src.Keys(ctx))
	}

	move := s.clock.NewTicker(s.timing.Move)
	defer move.Stop()
	spawn := s.clock.NewTicker(s.timing.Spawn)
	defer spawn.Stop()

	var (
		expiryC <-chan time.Time
		expiry  Timer
	)
	switch s.timing.Expiry {
	case ExpirySweep:
		sweep := s.clock.NewTicker(s.timing.Sweep)
		defer sweep.Stop()
		expiryC = sweep.C()
	default:
		expiry = s.clock.NewTimer(time.Hour)
		expiry.Stop()
		defer expiry.Stop()
		expiryC = expiry.C()
	}

	rearm := func(now time.Time) {
		if expiry == nil {
			return
		}
		next, ok := s.game.NextExpiry()
		if !ok {
			expiry.Stop()
			return
		}
		d := next.Sub(now)
		if d < 0 {
			d = 0
		}
		expiry.Reset(d)
	}
	rearm(s.clock.Now())

	s.logger.Printf("scheduler: started (move=%v spawn=%v expiry=%v)", s.timing.Move, s.timing.Spawn, s.timing.Expiry)
	defer s.logger.Printf("scheduler: stopped")

	for {
		// Pending key presses go first so a press is never overtaken by
		// a later Invoke.
		select {
		case k := <-s.keys:
			if s.handleKey(k) {
				return nil
			}
			rearm(s.clock.Now())
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return nil

		case now := <-move.C():
			s.game.Step(now)
			rearm(now)

		case now := <-spawn.C():
			s.game.SpawnFood(now)
			rearm(now)

		case now := <-expiryC:
			if s.timing.Expiry == ExpirySweep {
				s.game.SweepOldest(now)
			} else {
				s.game.ExpireDue(now)
			}
			rearm(now)

		case k := <-s.keys:
			if s.handleKey(k) {
				return nil
			}
			rearm(s.clock.Now())

		case c := <-s.calls:
			now := s.clock.Now()
			c.fn(s.game, now)
			rearm(now)
			close(c.done)
		}
	}
}

// handleKey applies one key press and reports whether the loop should
// stop.
func (s *Scheduler) handleKey(k input.Key) bool {
	now := s.clock.Now()
	if dir, ok := k.Direction(); ok {
		s.game.Turn(dir, now)
		return false
	}
	switch k {
	case input.KeyRestart:
		s.game.Reset(now)
	case input.KeyQuit:
		return true
	}
	return false
}

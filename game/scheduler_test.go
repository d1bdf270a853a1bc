package game

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"snake-torus/game/types"
	"snake-torus/input"
)

func noop(*Game, time.Time) {}

type harness struct {
	t     *testing.T
	s     *Scheduler
	g     *Game
	clock *ManualClock
	ctx   context.Context
	done  chan error
	stop  context.CancelFunc
}

// startScheduler runs a scheduler on a manual clock. Every timer fire is
// followed by a barrier call so Advance never outruns the loop.
func startScheduler(t *testing.T, timing Timing, sources ...input.Source) *harness {
	t.Helper()
	g := newTestGame()
	clock := NewManualClock(t0)
	s := NewScheduler(g, SchedulerConfig{
		Clock:   clock,
		Timing:  timing,
		Sources: sources,
		Logger:  log.New(io.Discard, "", 0),
	})
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{t: t, s: s, g: g, clock: clock, ctx: ctx, done: make(chan error, 1), stop: cancel}
	go func() { h.done <- s.Run(ctx) }()

	// The first call is served only once the timers exist.
	if err := s.Invoke(ctx, noop); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	clock.AfterFire(func() { _ = s.Invoke(ctx, noop) })
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func (h *harness) barrier() {
	h.t.Helper()
	if err := h.s.Invoke(h.ctx, noop); err != nil {
		h.t.Fatalf("Invoke: %v", err)
	}
}

func (h *harness) press(k input.Key) {
	h.t.Helper()
	if err := h.s.Press(h.ctx, k); err != nil {
		h.t.Fatalf("Press(%v): %v", k, err)
	}
	h.barrier()
}

func (h *harness) place(body []types.Point, dir types.Direction, foods ...types.Point) {
	h.t.Helper()
	err := h.s.Invoke(h.ctx, func(g *Game, now time.Time) {
		g.Place(body, dir, foods, now)
	})
	if err != nil {
		h.t.Fatalf("Invoke: %v", err)
	}
}

func foodCells(snap *Snapshot) []types.Point {
	cells := make([]types.Point, len(snap.Foods))
	for i, f := range snap.Foods {
		cells[i] = f.Pos
	}
	return cells
}

func samePoints(a, b []types.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// quiet keeps the snake and spawner still so only expiry is observed.
func quiet(mode ExpiryMode) Timing {
	return Timing{Move: time.Hour, Spawn: time.Hour, Sweep: types.SweepInterval, Expiry: mode}
}

func TestSchedulerMovesOnEveryTick(t *testing.T) {
	h := startScheduler(t, DefaultTiming())

	h.clock.Advance(499 * time.Millisecond)
	if got := h.g.Snapshot().Ticks; got != 0 {
		t.Fatalf("Ticks = %d before the first interval", got)
	}

	h.clock.Advance(time.Millisecond)
	want := []types.Point{{X: 9, Y: 12}, {X: 8, Y: 12}, {X: 7, Y: 12}}
	if got := h.g.Snapshot().Snake; !samePoints(got, want) {
		t.Errorf("Snake = %v, want %v", got, want)
	}

	h.clock.Advance(2 * time.Second)
	snap := h.g.Snapshot()
	if snap.Ticks != 5 {
		t.Errorf("Ticks = %d, want 5", snap.Ticks)
	}
	if snap.Head() != (types.Point{X: 13, Y: 12}) {
		t.Errorf("Head = %v, want (13,12)", snap.Head())
	}
}

func TestSchedulerWrapsAcrossEdge(t *testing.T) {
	h := startScheduler(t, Timing{Move: types.MoveInterval, Spawn: time.Hour, Sweep: types.SweepInterval})
	h.place([]types.Point{{X: 24, Y: 3}, {X: 23, Y: 3}}, types.Right)

	h.clock.Advance(types.MoveInterval)
	if got := h.g.Snapshot().Head(); got != (types.Point{X: 0, Y: 3}) {
		t.Errorf("Head = %v, want (0,3)", got)
	}
}

func TestSchedulerSpawnsFood(t *testing.T) {
	h := startScheduler(t, DefaultTiming())

	h.clock.Advance(types.SpawnInterval - time.Millisecond)
	if n := len(h.g.Snapshot().Foods); n != 1 {
		t.Fatalf("len(Foods) = %d before the spawn interval, want 1", n)
	}

	h.clock.Advance(time.Millisecond)
	snap := h.g.Snapshot()
	if len(snap.Foods) != 2 {
		t.Fatalf("len(Foods) = %d, want 2", len(snap.Foods))
	}
	spawned := snap.Foods[0]
	if spawned.Pos != (types.Point{X: 1, Y: 1}) {
		t.Errorf("spawned at %v, want (1,1)", spawned.Pos)
	}
	if want := t0.Add(types.SpawnInterval + types.FoodLifetime); !spawned.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", spawned.ExpiresAt, want)
	}
}

func TestSchedulerExpiresFoodAtItsDeadline(t *testing.T) {
	h := startScheduler(t, quiet(ExpiryDeadline))

	h.clock.Advance(2 * time.Second)
	h.place(types.DefaultSnake(), types.Right, types.Point{X: 1, Y: 1})

	// The default item was placed at t0.
	h.clock.Advance(8*time.Second - time.Millisecond)
	if n := len(h.g.Snapshot().Foods); n != 2 {
		t.Fatalf("len(Foods) = %d before the first deadline, want 2", n)
	}
	h.clock.Advance(time.Millisecond)
	if got := foodCells(h.g.Snapshot()); !samePoints(got, []types.Point{{X: 1, Y: 1}}) {
		t.Fatalf("Foods = %v after t0+10s, want [(1,1)]", got)
	}

	h.clock.Advance(2*time.Second - time.Millisecond)
	if n := len(h.g.Snapshot().Foods); n != 1 {
		t.Fatalf("len(Foods) = %d before the second deadline, want 1", n)
	}
	h.clock.Advance(time.Millisecond)
	if n := len(h.g.Snapshot().Foods); n != 0 {
		t.Errorf("len(Foods) = %d after t0+12s, want 0", n)
	}
}

func TestSchedulerSkipsEatenFood(t *testing.T) {
	h := startScheduler(t, quiet(ExpiryDeadline))
	expired := 0
	h.g.AddListener(func(ev Event) {
		if ev.Type == EventFoodExpired {
			expired++
		}
	})

	h.clock.Advance(2 * time.Second)
	err := h.s.Invoke(h.ctx, func(g *Game, now time.Time) {
		g.Place([]types.Point{{X: 3, Y: 10}, {X: 2, Y: 10}}, types.Right, []types.Point{{X: 1, Y: 1}}, now)
		g.Step(now)
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := foodCells(h.g.Snapshot()); !samePoints(got, []types.Point{{X: 1, Y: 1}}) {
		t.Fatalf("Foods = %v, want [(1,1)]", got)
	}

	// The eaten item's deadline passes without an expiry.
	h.clock.Advance(8 * time.Second)
	if expired != 0 {
		t.Errorf("expired %d items at the eaten deadline", expired)
	}
	h.clock.Advance(2 * time.Second)
	if expired != 1 || len(h.g.Snapshot().Foods) != 0 {
		t.Errorf("expired = %d, Foods = %v", expired, foodCells(h.g.Snapshot()))
	}
}

func TestSchedulerSweepRemovesLastItem(t *testing.T) {
	h := startScheduler(t, quiet(ExpirySweep))
	h.place(types.DefaultSnake(), types.Right, types.Point{X: 1, Y: 1}, types.Point{X: 2, Y: 2})

	h.clock.Advance(types.SweepInterval)
	want := []types.Point{{X: 2, Y: 2}, {X: 1, Y: 1}}
	if got := foodCells(h.g.Snapshot()); !samePoints(got, want) {
		t.Fatalf("Foods = %v after one sweep, want %v", got, want)
	}

	// Items past their lifetime stay until the sweep reaches them.
	h.clock.Advance(types.SweepInterval - time.Millisecond)
	if n := len(h.g.Snapshot().Foods); n != 2 {
		t.Fatalf("len(Foods) = %d, want 2", n)
	}
	h.clock.Advance(time.Millisecond)
	if got := foodCells(h.g.Snapshot()); !samePoints(got, []types.Point{{X: 2, Y: 2}}) {
		t.Errorf("Foods = %v after two sweeps, want [(2,2)]", got)
	}
}

func TestSchedulerAppliesTurnOnNextTick(t *testing.T) {
	h := startScheduler(t, DefaultTiming())

	h.press(input.KeyUp)
	if got := h.g.Snapshot().Head(); got != (types.Point{X: 8, Y: 12}) {
		t.Fatalf("Head = %v, the turn moved the snake early", got)
	}
	h.clock.Advance(types.MoveInterval)
	if got := h.g.Snapshot().Head(); got != (types.Point{X: 8, Y: 11}) {
		t.Errorf("Head = %v, want (8,11)", got)
	}

	h.press(input.KeyDown)
	h.clock.Advance(types.MoveInterval)
	if got := h.g.Snapshot().Head(); got != (types.Point{X: 8, Y: 10}) {
		t.Errorf("Head = %v, reversal should be ignored", got)
	}
}

func TestSchedulerReadsInputSources(t *testing.T) {
	keys := make(input.Chan)
	h := startScheduler(t, DefaultTiming(), keys)

	select {
	case keys <- input.KeyDown:
	case <-time.After(time.Second):
		t.Fatal("source was not subscribed")
	}

	deadline := time.Now().Add(time.Second)
	for h.g.Snapshot().Direction != types.Down {
		if time.Now().After(deadline) {
			t.Fatal("key from source never reached the game")
		}
		time.Sleep(time.Millisecond)
		h.barrier()
	}
}

func TestSchedulerSelfCollisionResets(t *testing.T) {
	h := startScheduler(t, Timing{Move: types.MoveInterval, Spawn: time.Hour, Sweep: types.SweepInterval})
	var resets []Event
	h.g.AddListener(func(ev Event) {
		if ev.Type == EventReset {
			resets = append(resets, ev)
		}
	})
	h.place([]types.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}, types.Down)

	h.clock.Advance(types.MoveInterval)
	h.barrier()
	snap := h.g.Snapshot()
	if !samePoints(snap.Snake, types.DefaultSnake()) {
		t.Errorf("Snake = %v, want the default layout", snap.Snake)
	}
	if snap.Resets != 1 {
		t.Errorf("Resets = %d, want 1", snap.Resets)
	}
	if len(resets) != 1 || resets[0].Manual || resets[0].FinalLength != 4 {
		t.Errorf("reset events = %+v", resets)
	}
}

func TestSchedulerRestartKey(t *testing.T) {
	h := startScheduler(t, DefaultTiming())
	h.clock.Advance(2 * types.MoveInterval)

	h.press(input.KeyRestart)
	snap := h.g.Snapshot()
	if !samePoints(snap.Snake, types.DefaultSnake()) {
		t.Errorf("Snake = %v, want the default layout", snap.Snake)
	}
	if got := foodCells(snap); !samePoints(got, []types.Point{types.DefaultFood}) {
		t.Errorf("Foods = %v, want the default item", got)
	}
}

func TestSchedulerQuitKeyStops(t *testing.T) {
	h := startScheduler(t, DefaultTiming())

	if err := h.s.Press(h.ctx, input.KeyQuit); err != nil {
		t.Fatalf("Press: %v", err)
	}
	select {
	case err := <-h.done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
		h.done <- err
	case <-time.After(time.Second):
		t.Fatal("Run did not return after quit")
	}
	if n := h.clock.Pending(); n != 0 {
		t.Errorf("Pending = %d after quit, want 0", n)
	}
}

func TestSchedulerTeardown(t *testing.T) {
	h := startScheduler(t, DefaultTiming())
	h.clock.Advance(time.Second)

	h.stop()
	err := <-h.done
	h.done <- err
	if err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
	if n := h.clock.Pending(); n != 0 {
		t.Errorf("Pending = %d after teardown, want 0", n)
	}

	ticks := h.g.Snapshot().Ticks
	h.clock.AfterFire(nil)
	h.clock.Advance(time.Minute)
	if got := h.g.Snapshot().Ticks; got != ticks {
		t.Errorf("Ticks moved from %d to %d after teardown", ticks, got)
	}

	if err := h.s.Invoke(context.Background(), noop); !errors.Is(err, ErrStopped) {
		t.Errorf("Invoke after stop = %v, want ErrStopped", err)
	}
	if err := h.s.Press(context.Background(), input.KeyUp); !errors.Is(err, ErrStopped) {
		t.Errorf("Press after stop = %v, want ErrStopped", err)
	}
}

func TestParseExpiryMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ExpiryMode
		wantErr bool
	}{
		{"", ExpiryDeadline, false},
		{"deadline", ExpiryDeadline, false},
		{"sweep", ExpirySweep, false},
		{"hourly", ExpiryDeadline, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiryMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

package ai

import (
	"context"

	"snake-torus/game"
)

// TrainOptions configures a headless training run.
type TrainOptions struct {
	Episodes int
	Timing   game.Timing

	// MaxSteps ends an episode that goes on too long without a collision.
	MaxSteps int

	// Checkpoint is called every CheckpointEvery finished episodes.
	CheckpointEvery int
	Checkpoint      func() error
}

// TrainResult summarizes a training run.
type TrainResult struct {
	Episodes   int
	Steps      int
	BestScore  int
	TotalScore int
}

func (r TrainResult) AverageScore() float64 {
	if r.Episodes == 0 {
		return 0
	}
	return float64(r.TotalScore) / float64(r.Episodes)
}

// Train lets pilot play g as fast as possible on simulated time. The
// pilot must not be listening to g yet.
func Train(ctx context.Context, g *game.Game, pilot *Autopilot, opts TrainOptions) (TrainResult, error) {
	if opts.Timing.Move <= 0 || opts.Timing.Spawn <= 0 {
		opts.Timing = game.DefaultTiming()
	}
	if opts.Timing.Expiry == game.ExpirySweep && opts.Timing.Sweep <= 0 {
		opts.Timing.Sweep = game.DefaultTiming().Sweep
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 100 * g.Snapshot().Grid.Cells()
	}

	var res TrainResult
	g.AddListener(func(ev game.Event) {
		if ev.Type != game.EventReset {
			return
		}
		res.Episodes++
		res.TotalScore += ev.FinalScore
		res.BestScore = max(res.BestScore, ev.FinalScore)
	})
	g.AddListener(pilot.Listen)

	now := g.Snapshot().At
	nextSpawn := now.Add(opts.Timing.Spawn)
	nextSweep := now.Add(opts.Timing.Sweep)
	steps := 0
	for res.Episodes < opts.Episodes {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		select {
		case k := <-pilot.keys:
			if dir, ok := k.Direction(); ok {
				g.Turn(dir, now)
			}
		default:
		}

		now = now.Add(opts.Timing.Move)
		for !nextSpawn.After(now) {
			g.SpawnFood(nextSpawn)
			nextSpawn = nextSpawn.Add(opts.Timing.Spawn)
		}
		if opts.Timing.Expiry == game.ExpirySweep {
			for !nextSweep.After(now) {
				g.SweepOldest(nextSweep)
				nextSweep = nextSweep.Add(opts.Timing.Sweep)
			}
		} else {
			g.ExpireDue(now)
		}

		before := res.Episodes
		g.Step(now)
		res.Steps++
		steps++
		// A manual reset ends the episode without a learning signal.
		if res.Episodes == before && steps >= opts.MaxSteps {
			g.Reset(now)
		}
		if res.Episodes > before {
			steps = 0
			if opts.Checkpoint != nil && opts.CheckpointEvery > 0 && res.Episodes%opts.CheckpointEvery == 0 {
				if err := opts.Checkpoint(); err != nil {
					pilot.logger.Printf("autopilot: checkpoint at episode %d: %v", res.Episodes, err)
				}
			}
		}
	}
	return res, nil
}

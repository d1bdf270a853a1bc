package ai

import (
	"snake-torus/game"
	"snake-torus/game/types"
)

// Sense reads the agent state off a snapshot.
func Sense(snap *game.Snapshot) State {
	head := snap.Head()
	grid := snap.Grid

	state := State{FoodDistance: -1, Heading: actionFor(snap.Direction)}
	for _, f := range snap.Foods {
		d := grid.Distance(head, f.Pos)
		if state.FoodDistance >= 0 && d >= state.FoodDistance {
			continue
		}
		state.FoodDistance = d
		state.FoodDir = [2]int{
			sign(shortestOffset(head.X, f.Pos.X, grid.Width)),
			sign(shortestOffset(head.Y, f.Pos.Y, grid.Height)),
		}
	}

	body := make(map[types.Point]bool, len(snap.Snake))
	for _, p := range snap.Snake {
		body[p] = true
	}
	for i, dir := range types.Directions {
		state.Danger[i] = body[grid.Wrap(head.Add(dir.Vector()))]
	}
	return state
}

// shortestOffset is the signed step count from a to b around a ring of
// the given size.
func shortestOffset(a, b, size int) int {
	d := b - a
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

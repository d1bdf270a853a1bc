package spectator

import (
	"snake-torus/game"
)

// Cell is a board coordinate.
type Cell struct {
	X int `msgpack:"x" json:"x"`
	Y int `msgpack:"y" json:"y"`
}

type FoodView struct {
	X         int   `msgpack:"x" json:"x"`
	Y         int   `msgpack:"y" json:"y"`
	ExpiresAt int64 `msgpack:"expiresAt" json:"expiresAt"` // unix ms
}

// Frame is the public view of one snapshot. Websocket clients receive it
// msgpack encoded, the HTTP API serves it as JSON.
type Frame struct {
	Event     string     `msgpack:"event" json:"event"`
	Session   string     `msgpack:"session" json:"session"`
	At        int64      `msgpack:"at" json:"at"` // unix ms
	Width     int        `msgpack:"width" json:"width"`
	Height    int        `msgpack:"height" json:"height"`
	Snake     []Cell     `msgpack:"snake" json:"snake"` // head first
	Direction string     `msgpack:"direction" json:"direction"`
	Foods     []FoodView `msgpack:"foods" json:"foods"`
	Score     int        `msgpack:"score" json:"score"`
	HighScore int        `msgpack:"highScore" json:"highScore"`
	Ticks     uint64     `msgpack:"ticks" json:"ticks"`
	Resets    int        `msgpack:"resets" json:"resets"`
}

// NewFrame projects snap for clients.
func NewFrame(event, session string, snap *game.Snapshot) Frame {
	f := Frame{
		Event:     event,
		Session:   session,
		At:        snap.At.UnixMilli(),
		Width:     snap.Grid.Width,
		Height:    snap.Grid.Height,
		Snake:     make([]Cell, len(snap.Snake)),
		Direction: snap.Direction.String(),
		Foods:     make([]FoodView, len(snap.Foods)),
		Score:     snap.Score,
		HighScore: snap.HighScore,
		Ticks:     snap.Ticks,
		Resets:    snap.Resets,
	}
	for i, p := range snap.Snake {
		f.Snake[i] = Cell{X: p.X, Y: p.Y}
	}
	for i, food := range snap.Foods {
		f.Foods[i] = FoodView{X: food.Pos.X, Y: food.Pos.Y, ExpiresAt: food.ExpiresAt.UnixMilli()}
	}
	return f
}

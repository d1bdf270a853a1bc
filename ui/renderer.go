package ui

import (
	"context"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snake-torus/game"
	"snake-torus/game/types"
	"snake-torus/input"
)

var windowKeys = map[int32]input.Key{
	rl.KeyUp:    input.KeyUp,
	rl.KeyDown:  input.KeyDown,
	rl.KeyLeft:  input.KeyLeft,
	rl.KeyRight: input.KeyRight,
	rl.KeyW:     input.KeyUp,
	rl.KeyS:     input.KeyDown,
	rl.KeyA:     input.KeyLeft,
	rl.KeyD:     input.KeyRight,
	rl.KeyR:     input.KeyRestart,
	rl.KeyQ:     input.KeyQuit,
}

// Window is the raylib frontend. Run must be called from the main
// goroutine with the OS thread locked.
type Window struct {
	title   string
	history *History
	keys    chan input.Key
	layout  Layout
}

func NewWindow(title string, history *History) *Window {
	return &Window{title: title, history: history, keys: make(chan input.Key, 16)}
}

// Keys makes the window an input.Source.
func (w *Window) Keys(ctx context.Context) <-chan input.Key {
	return input.Chan(w.keys).Keys(ctx)
}

// Run opens the window and draws snapshot() every frame until the window
// is closed or ctx is cancelled.
func (w *Window) Run(ctx context.Context, snapshot func() *game.Snapshot) {
	rl.InitWindow(1000, 760, w.title)
	rl.SetWindowState(rl.FlagWindowResizable)
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		for code, k := range windowKeys {
			if rl.IsKeyPressed(code) {
				w.push(k)
			}
		}
		w.Draw(snapshot())
	}
	w.push(input.KeyQuit)
}

func (w *Window) push(k input.Key) {
	select {
	case w.keys <- k:
	default:
	}
}

func (w *Window) Draw(snap *game.Snapshot) {
	w.layout = ComputeLayout(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), snap.Grid)
	l := w.layout

	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Black)

	rl.DrawRectangle(l.OffsetX-1, l.OffsetY-1, l.BoardWidth+2, l.BoardHeight+2, rl.DarkGray)
	for x := 0; x < snap.Grid.Width; x++ {
		for y := 0; y < snap.Grid.Height; y++ {
			px, py := l.CellOrigin(types.Point{X: x, Y: y})
			rl.DrawRectangleLines(px, py, l.CellSize, l.CellSize, rl.Gray)
		}
	}

	for i, p := range snap.Snake {
		px, py := l.CellOrigin(p)
		color := rl.Green
		if i == 0 {
			color = rl.Lime
		}
		rl.DrawRectangle(px, py, l.CellSize, l.CellSize, color)
	}
	w.drawHeading(snap.Head(), snap.Direction)

	// Food is drawn last so it stays visible on a shared cell.
	for _, f := range snap.Foods {
		px, py := l.CellOrigin(f.Pos)
		rl.DrawRectangle(px, py, l.CellSize, l.CellSize, rl.Red)
	}

	w.drawStatsPanel(snap)
}

func (w *Window) drawHeading(head types.Point, dir types.Direction) {
	l := w.layout
	x, y := l.CellOrigin(head)
	c, half := float32(l.CellSize), float32(l.CellSize/2)
	fx, fy := float32(x), float32(y)

	var a, b, tip rl.Vector2
	switch dir {
	case types.Right:
		tip, a, b = rl.Vector2{X: fx + c, Y: fy + half}, rl.Vector2{X: fx + half, Y: fy}, rl.Vector2{X: fx + half, Y: fy + c}
	case types.Left:
		tip, a, b = rl.Vector2{X: fx, Y: fy + half}, rl.Vector2{X: fx + half, Y: fy + c}, rl.Vector2{X: fx + half, Y: fy}
	case types.Down:
		tip, a, b = rl.Vector2{X: fx + half, Y: fy + c}, rl.Vector2{X: fx + c, Y: fy + half}, rl.Vector2{X: fx, Y: fy + half}
	default:
		tip, a, b = rl.Vector2{X: fx + half, Y: fy}, rl.Vector2{X: fx, Y: fy + half}, rl.Vector2{X: fx + c, Y: fy + half}
	}
	// raylib wants counter-clockwise vertices.
	rl.DrawTriangle(tip, a, b, rl.Yellow)
}

func (w *Window) drawStatsPanel(snap *game.Snapshot) {
	l := w.layout
	fontSize := max(min(l.ScreenHeight/40, l.PanelWidth/10), 10)
	lineHeight := fontSize + fontSize/2
	x, y := l.PanelX+5, int32(10)

	rl.DrawRectangle(l.PanelX, 0, l.PanelWidth, l.ScreenHeight, rl.DarkGray)
	for _, line := range StatusLines(snap, w.history) {
		rl.DrawText(line, x, y, fontSize, rl.White)
		y += lineHeight
	}
	w.drawPerformanceGraph(x, fontSize)
}

func (w *Window) drawPerformanceGraph(x, fontSize int32) {
	if w.history == nil {
		return
	}
	l := w.layout
	width := l.PanelWidth - 10
	height := l.ScreenHeight / 5
	y := l.ScreenHeight - height - fontSize*2

	rl.DrawRectangleLines(x, y, width, height, rl.White)
	rl.DrawText("Performance", x, y-fontSize-5, fontSize, rl.White)
	rl.DrawText(fmt.Sprintf("Games: %d", w.history.Games()), x, l.ScreenHeight-fontSize-5, fontSize, rl.White)

	scores := w.history.Scores()
	if len(scores) < 2 {
		return
	}
	top := 1
	for _, s := range scores {
		top = max(top, s)
	}
	px := func(i int) int32 { return x + int32(float32(width)*float32(i)/float32(maxScores)) }
	py := func(s float64) int32 { return y + height - int32(float32(height)*float32(s)/float32(top)) }
	for i := 1; i < len(scores); i++ {
		rl.DrawLine(px(i-1), py(float64(scores[i-1])), px(i), py(float64(scores[i])), rl.Green)
	}
	avgY := py(w.history.Average())
	for dx := x; dx < x+width; dx += 5 {
		rl.DrawLine(dx, avgY, dx+2, avgY, rl.Yellow)
	}
}

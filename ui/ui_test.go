package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"snake-torus/game"
	"snake-torus/game/entity"
	"snake-torus/game/types"
	"snake-torus/input"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want input.Key
	}{
		{tcell.KeyUp, 0, input.KeyUp},
		{tcell.KeyDown, 0, input.KeyDown},
		{tcell.KeyLeft, 0, input.KeyLeft},
		{tcell.KeyRight, 0, input.KeyRight},
		{tcell.KeyRune, 'w', input.KeyUp},
		{tcell.KeyRune, 'd', input.KeyRight},
		{tcell.KeyRune, 'r', input.KeyRestart},
		{tcell.KeyRune, 'q', input.KeyQuit},
		{tcell.KeyEscape, 0, input.KeyQuit},
		{tcell.KeyCtrlC, 0, input.KeyQuit},
		{tcell.KeyRune, 'x', input.KeyUnknown},
		{tcell.KeyTab, 0, input.KeyUnknown},
	}
	for _, tt := range tests {
		if got := keyFor(tt.key, tt.r); got != tt.want {
			t.Errorf("keyFor(%v, %q) = %v, want %v", tt.key, tt.r, got, tt.want)
		}
	}
}

func TestComputeLayout(t *testing.T) {
	grid := types.Grid{Width: 25, Height: 25}
	l := ComputeLayout(1000, 760, grid)

	if l.CellSize != 29 {
		t.Errorf("CellSize = %d, want 29", l.CellSize)
	}
	if l.BoardWidth != 25*29 || l.BoardHeight != 25*29 {
		t.Errorf("board = %dx%d", l.BoardWidth, l.BoardHeight)
	}
	if l.OffsetX+l.BoardWidth > l.PanelX {
		t.Errorf("board (ends at %d) overlaps the panel at %d", l.OffsetX+l.BoardWidth, l.PanelX)
	}
	if l.OffsetY < 0 || l.OffsetY+l.BoardHeight > 760 {
		t.Errorf("OffsetY = %d does not fit", l.OffsetY)
	}

	x, y := l.CellOrigin(types.Point{X: 2, Y: 3})
	if x != l.OffsetX+58 || y != l.OffsetY+87 {
		t.Errorf("CellOrigin = (%d,%d)", x, y)
	}

	tiny := ComputeLayout(20, 20, grid)
	if tiny.CellSize != 1 {
		t.Errorf("tiny CellSize = %d, want 1", tiny.CellSize)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	h.Listen(game.Event{Type: game.EventMoved})
	n := maxScores + 12
	for i := 0; i < n; i++ {
		h.Listen(game.Event{Type: game.EventReset, FinalScore: i % 4})
	}

	if h.Games() != n {
		t.Errorf("Games() = %d", h.Games())
	}
	scores := h.Scores()
	if len(scores) != maxScores {
		t.Fatalf("len(Scores()) = %d, want %d", len(scores), maxScores)
	}
	if scores[0] != 0 || scores[1] != 1 {
		t.Errorf("oldest kept scores = %v, want [0 1 ...]", scores[:2])
	}
	if avg := h.Average(); avg != 1.5 {
		t.Errorf("Average() = %v, want 1.5", avg)
	}
}

func testSnapshot() *game.Snapshot {
	return &game.Snapshot{
		Grid:      types.Grid{Width: 25, Height: 25},
		Snake:     types.DefaultSnake(),
		Direction: types.Right,
		Foods:     []entity.Food{{Pos: types.DefaultFood}},
		Score:     2,
		HighScore: 5,
	}
}

func TestStatusLines(t *testing.T) {
	snap := testSnapshot()
	lines := StatusLines(snap, nil)
	if len(lines) != 5 || lines[0] != "Score: 2" || !strings.Contains(lines[1], "5") {
		t.Errorf("lines = %q", lines)
	}

	h := NewHistory()
	h.Add(4)
	lines = StatusLines(snap, h)
	if len(lines) != 7 || lines[5] != "Games: 1" || lines[6] != "Avg: 4.00" {
		t.Errorf("lines with history = %q", lines)
	}
}

func TestTerminalDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(100, 30)

	term := NewTerminal(screen, NewHistory())
	term.Draw(testSnapshot())
	term.push(input.KeyUp)
	if got := <-term.keys; got != input.KeyUp {
		t.Errorf("queued %v, want up", got)
	}
}

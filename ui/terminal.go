package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"snake-torus/game"
	"snake-torus/game/types"
	"snake-torus/input"
)

const frameInterval = 33 * time.Millisecond

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSnake  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleFood   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// keyFor maps a terminal key event to a game key.
func keyFor(key tcell.Key, r rune) input.Key {
	switch key {
	case tcell.KeyUp:
		return input.KeyUp
	case tcell.KeyDown:
		return input.KeyDown
	case tcell.KeyLeft:
		return input.KeyLeft
	case tcell.KeyRight:
		return input.KeyRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return input.KeyQuit
	case tcell.KeyRune:
		return input.KeyForRune(r)
	}
	return input.KeyUnknown
}

// Terminal is the tcell frontend. Each board cell takes two columns so
// the board looks square.
type Terminal struct {
	screen  tcell.Screen
	history *History
	keys    chan input.Key
}

func NewTerminal(screen tcell.Screen, history *History) *Terminal {
	return &Terminal{screen: screen, history: history, keys: make(chan input.Key, 16)}
}

// Keys makes the terminal an input.Source.
func (t *Terminal) Keys(ctx context.Context) <-chan input.Key {
	return input.Chan(t.keys).Keys(ctx)
}

// Run takes over the terminal and redraws snapshot() until ctx is
// cancelled. The terminal is restored before Run returns.
func (t *Terminal) Run(ctx context.Context, snapshot func() *game.Snapshot) error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen.HideCursor()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	defer func() {
		t.screen.Fini()
		<-done
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	t.Draw(snapshot())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if k := keyFor(ev.Key(), ev.Rune()); k != input.KeyUnknown {
					t.push(k)
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		case <-ticker.C:
			t.Draw(snapshot())
		}
	}
}

func (t *Terminal) push(k input.Key) {
	select {
	case t.keys <- k:
	default:
	}
}

func (t *Terminal) Draw(snap *game.Snapshot) {
	t.screen.Clear()
	w, h := snap.Grid.Width, snap.Grid.Height

	for x := 0; x < w*2+2; x++ {
		t.screen.SetContent(x, 0, '─', nil, styleBorder)
		t.screen.SetContent(x, h+1, '─', nil, styleBorder)
	}
	for y := 1; y <= h; y++ {
		t.screen.SetContent(0, y, '│', nil, styleBorder)
		t.screen.SetContent(w*2+1, y, '│', nil, styleBorder)
	}

	for y, row := range snap.Cells() {
		for x, cell := range row {
			r, style := ' ', tcell.StyleDefault
			switch cell {
			case types.CellSnake:
				r, style = '█', styleSnake
				if snap.Head().X == x && snap.Head().Y == y {
					style = styleHead
				}
			case types.CellFood:
				r, style = '●', styleFood
			}
			t.screen.SetContent(1+x*2, 1+y, r, nil, style)
			t.screen.SetContent(2+x*2, 1+y, r, nil, style)
		}
	}

	col := w*2 + 4
	for i, line := range StatusLines(snap, t.history) {
		t.drawText(col, 1+i, line)
	}
	t.drawText(col, h, "arrows/wasd move, r restart, q quit")
	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, s string) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, styleText)
		x++
	}
}

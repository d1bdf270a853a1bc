// Package input maps key presses from any frontend to snake headings.
package input

import (
	"context"

	"snake-torus/game/types"
)

// Key is a frontend-independent key press.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyRestart
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyRestart:
		return "restart"
	case KeyQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Direction returns the heading a key asks for. ok is false for keys
// that are not directional.
func (k Key) Direction() (types.Direction, bool) {
	switch k {
	case KeyUp:
		return types.Up, true
	case KeyDown:
		return types.Down, true
	case KeyLeft:
		return types.Left, true
	case KeyRight:
		return types.Right, true
	default:
		return types.Direction{}, false
	}
}

// KeyForDirection is the inverse of Key.Direction.
func KeyForDirection(d types.Direction) Key {
	switch d {
	case types.Up:
		return KeyUp
	case types.Down:
		return KeyDown
	case types.Left:
		return KeyLeft
	case types.Right:
		return KeyRight
	default:
		return KeyUnknown
	}
}

// KeyForRune maps the letter bindings shared by every frontend.
func KeyForRune(r rune) Key {
	switch r {
	case 'w', 'W':
		return KeyUp
	case 's', 'S':
		return KeyDown
	case 'a', 'A':
		return KeyLeft
	case 'd', 'D':
		return KeyRight
	case 'r', 'R':
		return KeyRestart
	case 'q', 'Q':
		return KeyQuit
	default:
		return KeyUnknown
	}
}

// Source delivers key presses until ctx is cancelled. The returned
// channel is closed when the source stops.
type Source interface {
	Keys(ctx context.Context) <-chan Key
}

// Chan adapts a plain channel into a Source. Useful for frontends that
// own their event loop and for tests.
type Chan chan Key

func (c Chan) Keys(ctx context.Context) <-chan Key {
	out := make(chan Key)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case k, ok := <-c:
				if !ok {
					return
				}
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

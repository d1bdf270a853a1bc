package entity

import (
	"snake-torus/game/types"
)

// Snake holds the body (head first) and heading of the player.
type Snake struct {
	Body      []types.Point
	Direction types.Direction
}

func NewSnake(body []types.Point, dir types.Direction) *Snake {
	b := make([]types.Point, len(body))
	copy(b, body)
	return &Snake{
		Body:      b,
		Direction: dir,
	}
}

// NextHead is where the head lands after one step on grid.
func (s *Snake) NextHead(grid types.Grid) types.Point {
	return grid.Wrap(s.GetHead().Add(s.Direction.Vector()))
}

// Move prepends newHead. The tail stays until RemoveTail is called.
func (s *Snake) Move(newHead types.Point) {
	s.Body = append(s.Body, types.Point{})
	copy(s.Body[1:], s.Body)
	s.Body[0] = newHead
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 0 {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

func (s *Snake) GetHead() types.Point {
	return s.Body[0]
}

func (s *Snake) GetTail() types.Point {
	return s.Body[len(s.Body)-1]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Occupies reports whether any segment sits on p.
func (s *Snake) Occupies(p types.Point) bool {
	for _, part := range s.Body {
		if part == p {
			return true
		}
	}
	return false
}

// SetDirection changes heading unless dir would reverse the snake onto
// itself. It reports whether the change was accepted.
func (s *Snake) SetDirection(dir types.Direction) bool {
	if !dir.Valid() || dir == s.Direction.Opposite() {
		return false
	}
	s.Direction = dir
	return true
}

// Clone returns a deep copy.
func (s *Snake) Clone() *Snake {
	return NewSnake(s.Body, s.Direction)
}

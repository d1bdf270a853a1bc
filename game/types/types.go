package types

import "time"

// Point is a cell coordinate on the grid. It doubles as a unit
// direction vector.
type Point struct {
	X, Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Grid represents the game grid dimensions
type Grid struct {
	Width  int
	Height int
}

// Wrap folds p back onto the torus.
func (g Grid) Wrap(p Point) Point {
	return Point{X: wrap(p.X, g.Width), Y: wrap(p.Y, g.Height)}
}

// Contains reports whether p lies inside the grid without wrapping.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Cells returns the number of cells on the grid.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Distance is the Manhattan distance between two points, taking
// wraparound into account.
func (g Grid) Distance(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > g.Width/2 {
		dx = g.Width - dx
	}
	if dy > g.Height/2 {
		dy = g.Height - dy
	}
	return dx + dy
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Direction is one of the four unit vectors a snake can travel along.
type Direction Point

var (
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
)

// Directions lists every valid direction in a fixed order.
var Directions = [4]Direction{Up, Right, Down, Left}

// Vector returns the direction as a displacement.
func (d Direction) Vector() Point {
	return Point(d)
}

// Opposite returns the 180-degree reversal of d.
func (d Direction) Opposite() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

// Valid reports whether d is one of the four unit directions.
func (d Direction) Valid() bool {
	return abs(d.X)+abs(d.Y) == 1
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if d.String() == s {
			return d, true
		}
	}
	return Direction{}, false
}

// CellType is what the renderer should draw in a cell.
type CellType int

const (
	CellEmpty CellType = iota
	CellSnake
	CellFood
)

func (c CellType) String() string {
	switch c {
	case CellSnake:
		return "snake"
	case CellFood:
		return "food"
	default:
		return "empty"
	}
}

// Default board layout and timing.
const (
	GridWidth  = 25
	GridHeight = 25

	MoveInterval  = 500 * time.Millisecond
	SpawnInterval = 3000 * time.Millisecond
	SweepInterval = 10000 * time.Millisecond
	FoodLifetime  = 10000 * time.Millisecond

	MaxSpawnAttempts = 100
)

// DefaultSnake is the body a fresh game starts with, head first.
func DefaultSnake() []Point {
	return []Point{{X: 8, Y: 12}, {X: 7, Y: 12}, {X: 6, Y: 12}}
}

// DefaultFood is where the single starting food item sits.
var DefaultFood = Point{X: 4, Y: 10}

// DefaultDirection is the heading of a fresh snake.
var DefaultDirection = Right

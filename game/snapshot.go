package game

import (
	"time"

	"snake-torus/game/entity"
	"snake-torus/game/types"
)

// Snapshot is an immutable view of the game published after every
// transition. Callers must not modify its slices.
type Snapshot struct {
	Grid      types.Grid
	Snake     []types.Point // head first
	Direction types.Direction
	Foods     []entity.Food // newest first
	Score     int
	HighScore int
	Ticks     uint64
	Resets    int
	At        time.Time
}

func (s *Snapshot) Head() types.Point {
	return s.Snake[0]
}

// Cells projects the board for rendering: rows indexed [y][x]. A cell
// holding both food and snake renders as food.
func (s *Snapshot) Cells() [][]types.CellType {
	index := make(map[types.Point]types.CellType, len(s.Snake)+len(s.Foods))
	for _, p := range s.Snake {
		index[p] = types.CellSnake
	}
	for _, f := range s.Foods {
		index[f.Pos] = types.CellFood
	}

	rows := make([][]types.CellType, s.Grid.Height)
	for y := range rows {
		rows[y] = make([]types.CellType, s.Grid.Width)
		for x := range rows[y] {
			rows[y][x] = index[types.Point{X: x, Y: y}]
		}
	}
	return rows
}

// Lines renders the projection as text, one string per row.
func (s *Snapshot) Lines(empty, snake, food rune) []string {
	cells := s.Cells()
	lines := make([]string, len(cells))
	for y, row := range cells {
		buf := make([]rune, len(row))
		for x, c := range row {
			switch c {
			case types.CellSnake:
				buf[x] = snake
			case types.CellFood:
				buf[x] = food
			default:
				buf[x] = empty
			}
		}
		lines[y] = string(buf)
	}
	return lines
}

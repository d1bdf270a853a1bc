package ui

import (
	"fmt"

	"snake-torus/game"
	"snake-torus/game/types"
)

const borderPadding = 10 // around the board, in pixels

// Layout places the board and the stats panel inside a window.
type Layout struct {
	CellSize     int32
	OffsetX      int32
	OffsetY      int32
	BoardWidth   int32
	BoardHeight  int32
	PanelX       int32
	PanelWidth   int32
	ScreenHeight int32
}

// ComputeLayout gives the panel a seventh of the width and fits square
// cells into the rest.
func ComputeLayout(screenWidth, screenHeight int32, grid types.Grid) Layout {
	panel := screenWidth / 7
	gameWidth := screenWidth - panel

	cellW := (gameWidth - borderPadding*2) / int32(grid.Width)
	cellH := (screenHeight - borderPadding*2) / int32(grid.Height)
	cell := max(min(cellW, cellH), 1)

	l := Layout{
		CellSize:     cell,
		BoardWidth:   cell * int32(grid.Width),
		BoardHeight:  cell * int32(grid.Height),
		PanelX:       gameWidth,
		PanelWidth:   panel,
		ScreenHeight: screenHeight,
	}
	l.OffsetX = borderPadding + (gameWidth-borderPadding*2-l.BoardWidth)/2
	l.OffsetY = (screenHeight - l.BoardHeight) / 2
	return l
}

// CellOrigin is the top-left pixel of board cell p.
func (l Layout) CellOrigin(p types.Point) (int32, int32) {
	return l.OffsetX + int32(p.X)*l.CellSize, l.OffsetY + int32(p.Y)*l.CellSize
}

// StatusLines is the text shown next to the board by both frontends.
func StatusLines(snap *game.Snapshot, h *History) []string {
	lines := []string{
		fmt.Sprintf("Score: %d", snap.Score),
		fmt.Sprintf("High:  %d", snap.HighScore),
		fmt.Sprintf("Length: %d", len(snap.Snake)),
		fmt.Sprintf("Food: %d", len(snap.Foods)),
		fmt.Sprintf("Resets: %d", snap.Resets),
	}
	if h != nil && h.Games() > 0 {
		lines = append(lines,
			fmt.Sprintf("Games: %d", h.Games()),
			fmt.Sprintf("Avg: %.2f", h.Average()),
		)
	}
	return lines
}

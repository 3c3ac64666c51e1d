package util

import "fmt"

// Cell is a cell coordinate. Y grows southwards.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Translate a cell by an offset
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

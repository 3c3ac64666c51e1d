// Package patterns is a small library of well known Life patterns.
package patterns

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"

	"uk.ac.bris.cs/hashlife/util"
)

// Pattern is a named set of live cells. The bounding box of Cells starts at
// (0, 0).
type Pattern struct {
	Name        string
	Description string
	Cells       []util.Cell
}

// Setter is anything cells can be written to
type Setter interface {
	Set(x, y int, alive bool)
}

var library = map[string]Pattern{}

func register(name, description, picture string) {
	library[name] = Pattern{Name: name, Description: description, Cells: parsePicture(picture)}
}

// Read a picture of 'O' (live) and '.' (dead) rows. Leading blank lines and
// indentation shared by every row are ignored.
func parsePicture(picture string) []util.Cell {
	var cells []util.Cell
	rows := strings.Split(strings.Trim(picture, "\n"), "\n")
	indent := -1
	for _, row := range rows {
		trimmed := strings.TrimLeft(row, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(row) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	for y, row := range rows {
		if len(row) < indent {
			continue
		}
		for x, char := range row[indent:] {
			if char == 'O' {
				cells = append(cells, util.Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

func init() {
	register("block", "still life", `
OO
OO`)
	register("blinker", "period 2 oscillator", `
OOO`)
	register("toad", "period 2 oscillator", `
.OOO
OOO.`)
	register("beacon", "period 2 oscillator", `
OO..
OO..
..OO
..OO`)
	register("glider", "c/4 diagonal spaceship moving south-east", `
.O.
..O
OOO`)
	register("lwss", "lightweight spaceship, c/2 westwards", `
.O..O
O....
O...O
OOOO.`)
	register("r-pentomino", "methuselah stabilising after 1103 generations", `
.OO
OO.
.O.`)
	register("acorn", "methuselah stabilising after 5206 generations", `
.O.....
...O...
OO..OOO`)
	register("diehard", "methuselah vanishing after 130 generations", `
......O.
OO......
.O...OOO`)
	register("gosper-gun", "Gosper glider gun, one glider every 30 generations", `
........................O
......................O.O
............OO......OO............OO
...........O...O....OO............OO
OO........O.....O...OO
OO........O...O.OO....O.O
..........O.....O.......O
...........O...O
............OO`)
}

// Lookup finds a pattern by name
func Lookup(name string) (Pattern, bool) {
	p, ok := library[strings.ToLower(name)]
	return p, ok
}

// Names lists the library in alphabetical order
func Names() []string {
	return slices.Sorted(maps.Keys(library))
}

// RandomName is the pattern name drivers use for a Random soup
const RandomName = "random"

// Random fills a width by height box with live cells at the given density.
// The same seed always gives the same soup.
func Random(seed uint64, width, height int, density float64) Pattern {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := Pattern{
		Name:        RandomName,
		Description: fmt.Sprintf("%dx%d soup at density %.2f, seed %d", width, height, density, seed),
	}
	for y := 0; y != height; y++ {
		for x := 0; x != width; x++ {
			if rng.Float64() < density {
				p.Cells = append(p.Cells, util.Cell{X: x, Y: y})
			}
		}
	}
	return p
}

// Size returns the width and height of the bounding box
func (p Pattern) Size() (width, height int) {
	for _, cell := range p.Cells {
		width = max(width, cell.X+1)
		height = max(height, cell.Y+1)
	}
	return width, height
}

// Centred returns the pattern shifted so its bounding box is centred on the
// origin
func (p Pattern) Centred() Pattern {
	width, height := p.Size()
	return p.Translated(-width/2, -height/2)
}

// Translated returns a copy of the pattern moved by (dx, dy)
func (p Pattern) Translated(dx, dy int) Pattern {
	moved := p
	moved.Cells = make([]util.Cell, len(p.Cells))
	for i, cell := range p.Cells {
		moved.Cells[i] = cell.Add(util.Cell{X: dx, Y: dy})
	}
	return moved
}

// Place sets every cell of p, moved by (dx, dy), alive in dst
func Place(dst Setter, p Pattern, dx, dy int) {
	for _, cell := range p.Cells {
		dst.Set(cell.X+dx, cell.Y+dy, true)
	}
}

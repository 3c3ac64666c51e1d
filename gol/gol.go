// Package gol drives a Hashlife universe turn by turn and reports progress as events.
package gol

import (
	"errors"
	"fmt"

	"uk.ac.bris.cs/hashlife/hashlife"
	"uk.ac.bris.cs/hashlife/patterns"
	"uk.ac.bris.cs/hashlife/util"
)

// Forever as Turns keeps stepping until 'q' is pressed, with steps of at most 2^32
// generations
const Forever = -1

var ErrInvalidParams = errors.New("invalid parameters")

// Params provides the details of how to run the Game of Life and which pattern to load.
type Params struct {
	Turns        int         `yaml:"turns"`         // Generations to advance, or Forever
	Threads      int         `yaml:"threads"`       // Goroutines per step
	StepExponent int         `yaml:"step_exponent"` // Each step moves 2^StepExponent generations, negative for the full quantum
	Rule         string      `yaml:"rule"`
	Pattern      string      `yaml:"pattern"` // Library name or "random", centred on the offset
	OffsetX      int         `yaml:"offset_x"`
	OffsetY      int         `yaml:"offset_y"`
	Cells        []util.Cell `yaml:"cells"` // Extra live cells, not offset
	Seed         uint64      `yaml:"seed"`        // Random pattern only
	RandomSize   int         `yaml:"random_size"` // Side of the random soup
	Density      float64     `yaml:"density"`     // Live fraction of the random soup
}

// DefaultParams runs a glider for a hundred generations under Conway's rule
func DefaultParams() Params {
	return Params{
		Turns:        100,
		Threads:      1,
		StepExponent: hashlife.MaxStep,
		Rule:         hashlife.Conway.String(),
		Pattern:      "glider",
		RandomSize:   64,
		Density:      0.3,
	}
}

// Validate checks the parameters can be run. Errors wrap ErrInvalidParams, or the rule
// parsing error for a bad rule.
func (p Params) Validate() error {
	if p.Turns < Forever {
		return fmt.Errorf("%w: turns must be non-negative, got %d", ErrInvalidParams, p.Turns)
	}
	if p.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidParams, p.Threads)
	}
	if p.StepExponent > hashlife.MaxStepExponent {
		return fmt.Errorf("%w: step exponent %d is too large", ErrInvalidParams, p.StepExponent)
	}
	if _, err := hashlife.ParseRule(p.Rule); err != nil {
		return err
	}
	if p.Pattern == patterns.RandomName {
		if p.RandomSize < 1 {
			return fmt.Errorf("%w: random size must be at least 1, got %d", ErrInvalidParams, p.RandomSize)
		}
		if p.Density <= 0 || p.Density > 1 {
			return fmt.Errorf("%w: density must be in (0, 1], got %v", ErrInvalidParams, p.Density)
		}
	} else if p.Pattern != "" {
		if _, ok := patterns.Lookup(p.Pattern); !ok {
			return fmt.Errorf("%w: unknown pattern %q", ErrInvalidParams, p.Pattern)
		}
	} else if len(p.Cells) == 0 {
		return fmt.Errorf("%w: no pattern or cells given", ErrInvalidParams)
	}
	return nil
}

// Build an empty universe for p and place its pattern and cells
func (p Params) universe() *hashlife.Universe {
	rule, err := hashlife.ParseRule(p.Rule)
	util.Check(err)
	u := hashlife.New(
		hashlife.WithRule(rule),
		hashlife.WithThreads(p.Threads),
		hashlife.WithStepExponent(p.StepExponent),
	)
	switch p.Pattern {
	case "":
	case patterns.RandomName:
		pattern := patterns.Random(p.Seed, p.RandomSize, p.RandomSize, p.Density)
		patterns.Place(u, pattern.Centred(), p.OffsetX, p.OffsetY)
	default:
		pattern, _ := patterns.Lookup(p.Pattern)
		patterns.Place(u, pattern.Centred(), p.OffsetX, p.OffsetY)
	}
	for _, cell := range p.Cells {
		u.Set(cell.X, cell.Y, true)
	}
	return u
}

// Run evolves the pattern described by p, sending events until it finishes or 'q' is
// pressed, then closes events. keyPresses may be nil. Run panics if p does not validate.
func Run(p Params, events chan<- Event, keyPresses <-chan rune) {
	util.Check(p.Validate())

	distributorChannels := distributorChannels{
		events:     events,
		keyPresses: keyPresses,
	}
	distributor(p, p.universe(), distributorChannels)
}

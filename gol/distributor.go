package gol

import (
	"math"
	"math/bits"
	"time"

	"uk.ac.bris.cs/hashlife/hashlife"
)

type distributorChannels struct {
	events     chan<- Event
	keyPresses <-chan rune
}

// Period of AliveCellsCount events
var reportInterval = 2 * time.Second

// Largest step exponent of a Forever run. Full-quantum steps double as a moving
// pattern spreads, so an uncapped run would reach the edge of the addressable
// plane within a few dozen steps.
const foreverExponent = 32

// distributor steps the universe until p.Turns generations have passed and interacts with
// the user through events and key presses. It stops early, as if 'q' was pressed, when the
// pattern outgrows the addressable plane or the turn counter would overflow.
func distributor(p Params, u *hashlife.Universe, c distributorChannels) {

	c.events <- CellsFlipped{0, u.Cells()}

	// Snapshot function
	snapshot := func(turn int) {
		event := Snapshot{CompletedTurns: turn, Population: int(u.Population())}
		if lo, hi, ok := u.Bounds(); ok {
			event.Min, event.Max = lo, hi
		}
		c.events <- event
	}

	// Key press function, returns true on quit
	paused := false
	press := func(turn int, char rune) bool {
		switch char {
		case 's':
			snapshot(turn)
		case 'q':
			return true
		case 'p':
			paused = !paused
			if paused {
				c.events <- StateChange{turn, Paused}
			} else {
				c.events <- StateChange{turn, Executing}
			}
		}
		return false
	}

	// Alive timer
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	// Evaluate each step
	turn := 0
	c.events <- StateChange{turn, Executing}
	for turn != p.Turns {
		quantum, err := u.Quantum()
		if err != nil {
			goto quit
		}
		if p.Turns == Forever {
			if quantum > 1<<foreverExponent {
				u.SetStepExponent(foreverExponent)
				quantum = 1 << foreverExponent
			}
			if turn > math.MaxInt-int(quantum) {
				goto quit
			}
		} else if remaining := p.Turns - turn; quantum > uint64(remaining) {
			// Shrink the step rather than overshoot
			u.SetStepExponent(bits.Len(uint(remaining)) - 1)
		}
		advanced := int(u.Step())
		turn += advanced
		c.events <- TurnComplete{turn, advanced, u.Level(), u.Table().Size()}
		// Handle events, blocking while paused
	handle:
		if paused {
			select {
			case <-ticker.C:
				c.events <- AliveCellsCount{turn, int(u.Population())}
			case char := <-c.keyPresses:
				if press(turn, char) {
					goto quit
				}
			}
		} else {
			select {
			case <-ticker.C:
				c.events <- AliveCellsCount{turn, int(u.Population())}
			case char := <-c.keyPresses:
				if press(turn, char) {
					goto quit
				}
			default:
			}
		}
		if paused {
			goto handle
		}
	}

quit:
	c.events <- FinalTurnComplete{turn, u.Cells()}

	c.events <- StateChange{turn, Quitting}

	// Close the channel so receivers ranging over it stop
	close(c.events)
}

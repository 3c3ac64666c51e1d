package gol

import (
	"fmt"

	"uk.ac.bris.cs/hashlife/util"
)

// Event represents any Game of Life event that needs to be communicated to the user.
type Event interface {
	// Stringer allows each event to be printed by the CLI
	fmt.Stringer
	// GetCompletedTurns should return the number of generations completed when the event was sent
	GetCompletedTurns() int
}

// State represents a change in the state of execution.
type State int

const (
	Paused State = iota
	Executing
	Quitting
)

func (state State) String() string {
	switch state {
	case Paused:
		return "Paused"
	case Executing:
		return "Executing"
	case Quitting:
		return "Quitting"
	default:
		return "Incorrect State"
	}
}

// StateChange is sent on start, on every pause or resume, and before the events channel closes.
type StateChange struct {
	CompletedTurns int
	NewState       State
}

// AliveCellsCount is sent every two seconds while the distributor is running or paused.
type AliveCellsCount struct {
	CompletedTurns int
	CellsCount     int
}

// CellsFlipped carries every cell that changed state. The distributor sends one before the
// first step with the initial live cells.
type CellsFlipped struct {
	CompletedTurns int
	Cells          []util.Cell
}

// TurnComplete is sent after every step of the universe. A step may span many generations.
type TurnComplete struct {
	CompletedTurns int
	Advanced       int  // Generations moved by this step
	Level          uint // Root level after the step
	Nodes          int  // Nodes interned so far
}

// Snapshot answers the 's' key with the live population and its bounding box.
type Snapshot struct {
	CompletedTurns int
	Population     int
	Min, Max       util.Cell // Inclusive, zero when the universe is empty
}

// FinalTurnComplete is sent once the distributor stops, with every live cell in row-major order.
type FinalTurnComplete struct {
	CompletedTurns int
	Alive          []util.Cell
}

func (event StateChange) String() string {
	return fmt.Sprintf("%v", event.NewState)
}

func (event StateChange) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event AliveCellsCount) String() string {
	return fmt.Sprintf("Alive Cells %v", event.CellsCount)
}

func (event AliveCellsCount) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event CellsFlipped) String() string {
	return fmt.Sprintf("%d cells flipped", len(event.Cells))
}

func (event CellsFlipped) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event TurnComplete) String() string {
	return fmt.Sprintf("Generation %d (+%d, level %d, %d nodes)", event.CompletedTurns, event.Advanced, event.Level, event.Nodes)
}

func (event TurnComplete) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event Snapshot) String() string {
	if event.Population == 0 {
		return "Snapshot: empty"
	}
	return fmt.Sprintf("Snapshot: %d alive in %v..%v", event.Population, event.Min, event.Max)
}

func (event Snapshot) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event FinalTurnComplete) String() string {
	return fmt.Sprintf("Final generation %d, %d alive", event.CompletedTurns, len(event.Alive))
}

func (event FinalTurnComplete) GetCompletedTurns() int {
	return event.CompletedTurns
}

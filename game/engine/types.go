package engine

import (
	"errors"
	"fmt"
)

// Faction identifies which side a unit fights for. The enemy faction is
// always driven by ChaseAI.
type Faction string

const (
	Player Faction = "player"
	Enemy  Faction = "enemy"
)

// Opponent returns the other faction.
func (f Faction) Opponent() Faction {
	if f == Player {
		return Enemy
	}
	return Player
}

// Valid reports whether f is a known faction
func (f Faction) Valid() bool {
	return f == Player || f == Enemy
}

// TurnPhase is the global turn state of a match
type TurnPhase string

const (
	PlayerTurn TurnPhase = "player_turn"
	EnemyTurn  TurnPhase = "enemy_turn"
)

// Faction returns the faction allowed to act during the phase
func (p TurnPhase) Faction() Faction {
	if p == EnemyTurn {
		return Enemy
	}
	return Player
}

// Next returns the phase that follows p
func (p TurnPhase) Next() TurnPhase {
	if p == PlayerTurn {
		return EnemyTurn
	}
	return PlayerTurn
}

const (
	// Validation constants
	MinGridSize     = 1
	MaxGridSize     = 64
	DefaultCellSize = 64.0
	DefaultGridSize = 10
)

var (
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrIllegalMove      = errors.New("illegal move")
)

// Cell is a grid coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// UnitID identifies a unit for the lifetime of a match. IDs are assigned in
// spawn order and define the enumeration order used for AI tie-breaks.
type UnitID int

// Unit is the canonical record of a unit owned by the Registry
type Unit struct {
	ID       UnitID  `json:"id"`
	Faction  Faction `json:"faction"`
	Position Cell    `json:"position"`
	HasActed bool    `json:"has_acted"`
}

// UnitSnapshot is the render-facing view of a unit
type UnitSnapshot struct {
	ID       UnitID  `json:"id"`
	Faction  Faction `json:"faction"`
	Position Cell    `json:"position"`
}

// ActionKind distinguishes a move from a pass in the action history
type ActionKind string

const (
	ActionMove ActionKind = "move"
	ActionPass ActionKind = "pass"
)

// ActionRecord is one consumed unit action
type ActionRecord struct {
	Number    int        `json:"number"`
	Turn      int        `json:"turn"`
	Phase     TurnPhase  `json:"phase"`
	Unit      UnitID     `json:"unit"`
	Faction   Faction    `json:"faction"`
	Kind      ActionKind `json:"kind"`
	From      Cell       `json:"from"`
	To        Cell       `json:"to"`
	Target    *Cell      `json:"target,omitempty"` // chase target, enemy actions only
	Timestamp int64      `json:"timestamp"`
}

// ClickOutcome describes what an input event did
type ClickOutcome string

const (
	OutcomeSelected   ClickOutcome = "selected"
	OutcomeDeselected ClickOutcome = "deselected"
	OutcomeMoved      ClickOutcome = "moved"
	OutcomeIgnored    ClickOutcome = "ignored"
	OutcomeAdvanced   ClickOutcome = "advanced"
	OutcomeTurnEnded  ClickOutcome = "turn_ended"
)

// ClickResult reports the effect of one inbound event. Actions holds every
// unit action the event caused, including an enemy pass triggered by a
// phase change. Transitions lists the phases entered, in order.
type ClickResult struct {
	Outcome     ClickOutcome   `json:"outcome"`
	Unit        *UnitID        `json:"unit,omitempty"`
	Actions     []ActionRecord `json:"actions,omitempty"`
	Transitions []TurnPhase    `json:"transitions,omitempty"`
	Phase       TurnPhase      `json:"phase"`
	Turn        int            `json:"turn"`
}

// PhaseChanged reports whether the event flipped the turn phase at least once
func (r ClickResult) PhaseChanged() bool {
	return len(r.Transitions) > 0
}

// MatchState is the complete serialisable state of a match
type MatchState struct {
	Scenario     string         `json:"scenario"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	CellSize     float64        `json:"cell_size"`
	Phase        TurnPhase      `json:"phase"`
	Turn         int            `json:"turn"`
	Units        []Unit         `json:"units"`
	NextUnitID   UnitID         `json:"next_unit_id"`
	Selected     *UnitID        `json:"selected,omitempty"`
	Highlights   []Cell         `json:"highlights"`
	Message      string         `json:"message"`
	History      []ActionRecord `json:"history"`
	TotalActions int            `json:"total_actions"`

	// CurrentActions holds the actions since the last reset; History is cumulative.
	CurrentActions      []ActionRecord `json:"current_actions"`
	CurrentActionsCount int            `json:"current_actions_count"`

	// Board is a computed row-major text view, not used when restoring.
	Board []string `json:"board,omitempty"`
}

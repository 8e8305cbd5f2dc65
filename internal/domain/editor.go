package domain

import (
	"encoding/json"
	"fmt"
)

// Phase names the mode of the waypoint editor. Exactly one phase is active at
// a time, so "adding" and "editing" can never both be true.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingPlacement
	PhasePlacementPending
	PhaseEditing
)

var phaseNames = map[Phase]string{
	PhaseIdle:              "idle",
	PhaseAwaitingPlacement: "awaitingPlacement",
	PhasePlacementPending:  "placementPending",
	PhaseEditing:           "editing",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalJSON renders the phase by name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the names written by MarshalJSON.
func (p *Phase) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for ph, n := range phaseNames {
		if n == name {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown editor phase %q", name)
}

// Adding reports whether the editor is in either add-mode phase.
func (p Phase) Adding() bool {
	return p == PhaseAwaitingPlacement || p == PhasePlacementPending
}

// EditorState is the tagged value held by the waypoint editor. Which of the
// payload fields are meaningful depends on Phase:
//
//	idle               none
//	awaitingPlacement  Remaining
//	placementPending   Remaining, Pending
//	editing            Target
//
// Build states with the constructors below rather than by hand.
type EditorState struct {
	Phase     Phase       `json:"phase"`
	Remaining int         `json:"remaining,omitempty"`
	Pending   *Coordinate `json:"pending,omitempty"`
	Target    int64       `json:"target,omitempty"`
}

// Idle is the initial state.
func Idle() EditorState {
	return EditorState{Phase: PhaseIdle}
}

// AwaitingPlacement waits for the user to choose a point on the map.
func AwaitingPlacement(remaining int) EditorState {
	return EditorState{Phase: PhaseAwaitingPlacement, Remaining: remaining}
}

// PlacementPending holds a chosen point until it is confirmed.
func PlacementPending(remaining int, c Coordinate) EditorState {
	return EditorState{Phase: PhasePlacementPending, Remaining: remaining, Pending: &c}
}

// Editing targets an existing waypoint by id.
func Editing(target int64) EditorState {
	return EditorState{Phase: PhaseEditing, Target: target}
}

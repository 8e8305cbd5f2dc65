package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/idgen"
)

// LoopSaver persists a loop. *LoopService satisfies it.
type LoopSaver interface {
	Save(ctx context.Context, l domain.Loop) error
}

// ConfirmResult reports what a Confirm call did.
type ConfirmResult struct {
	Waypoint domain.Waypoint `json:"waypoint"`
	// Appended is false when there was no pending placement to confirm.
	Appended bool `json:"appended"`
	// Completed is true when this confirm used up the last placement.
	Completed bool `json:"completed"`
}

// WaypointEditor drives waypoint changes on one loop through a single state
// value. Only Confirm, SaveEdit, ClearAll and Sync write to the store; every
// other transition is a pure state update.
//
// A failed write does not undo the transition: the in-memory loop keeps the
// change and Sync retries the write.
//
// WaypointEditor is not safe for concurrent use. SessionManager serializes
// access to the editors it hands out.
type WaypointEditor struct {
	saver LoopSaver
	seq   *idgen.Sequence
	loop  domain.Loop
	state domain.EditorState
}

// NewWaypointEditor starts an idle editor over l.
func NewWaypointEditor(l domain.Loop, saver LoopSaver, seq *idgen.Sequence) *WaypointEditor {
	l = l.Clone()
	return &WaypointEditor{saver: saver, seq: seq, loop: l, state: domain.Idle()}
}

// State returns the current state.
func (e *WaypointEditor) State() domain.EditorState {
	return e.state
}

// Loop returns a copy of the loop being edited.
func (e *WaypointEditor) Loop() domain.Loop {
	return e.loop.Clone()
}

// StartAdding enters add mode for n new waypoints. It is a no-op unless the
// editor is idle and n is positive.
func (e *WaypointEditor) StartAdding(n int) bool {
	if n <= 0 || e.state.Phase != domain.PhaseIdle {
		return false
	}
	e.state = domain.AwaitingPlacement(n)
	return true
}

// ChoosePoint records c as the pending placement, replacing any earlier
// choice. It is a no-op outside add mode or for an out-of-range coordinate.
func (e *WaypointEditor) ChoosePoint(c domain.Coordinate) bool {
	if !e.state.Phase.Adding() || !c.Valid() {
		return false
	}
	e.state = domain.PlacementPending(e.state.Remaining, c)
	return true
}

// Confirm appends the pending placement as a waypoint and persists the loop.
// A blank label becomes "Location <n>". Without a pending placement it does
// nothing and reports Appended=false.
func (e *WaypointEditor) Confirm(ctx context.Context, label, stayHint string) (ConfirmResult, error) {
	if e.state.Phase != domain.PhasePlacementPending || e.state.Pending == nil {
		return ConfirmResult{}, nil
	}

	order := len(e.loop.Waypoints) + 1
	label = strings.TrimSpace(label)
	if label == "" {
		label = domain.DefaultWaypointLabel(order)
	}
	w := domain.Waypoint{
		ID:         e.seq.NextAfter(e.loop.MaxWaypointID()),
		Coordinate: *e.state.Pending,
		Label:      label,
		StayHint:   strings.TrimSpace(stayHint),
		Order:      order,
	}
	e.loop.Waypoints = append(e.loop.Waypoints, w)

	res := ConfirmResult{Waypoint: w, Appended: true}
	if remaining := e.state.Remaining - 1; remaining > 0 {
		e.state = domain.AwaitingPlacement(remaining)
	} else {
		e.state = domain.Idle()
		res.Completed = true
	}

	if err := e.persist(ctx); err != nil {
		return res, fmt.Errorf("service.WaypointEditor.Confirm: %w", err)
	}
	return res, nil
}

// SelectWaypoint starts editing the waypoint with the given id. It is a no-op
// in add mode or when no waypoint has that id. Selecting while already
// editing switches the target.
func (e *WaypointEditor) SelectWaypoint(id int64) bool {
	if e.state.Phase.Adding() {
		return false
	}
	if _, ok := e.loop.WaypointByID(id); !ok {
		return false
	}
	e.state = domain.Editing(id)
	return true
}

// SaveEdit writes label and stayHint to the waypoint being edited and returns
// to idle. If that waypoint no longer exists nothing is written. A blank
// label falls back to the default for the waypoint's position.
func (e *WaypointEditor) SaveEdit(ctx context.Context, label, stayHint string) error {
	if e.state.Phase != domain.PhaseEditing {
		return nil
	}
	target := e.state.Target
	e.state = domain.Idle()

	idx := -1
	for i, w := range e.loop.Waypoints {
		if w.ID == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	w := &e.loop.Waypoints[idx]
	w.Label = strings.TrimSpace(label)
	if w.Label == "" {
		w.Label = domain.DefaultWaypointLabel(w.Order)
	}
	w.StayHint = strings.TrimSpace(stayHint)

	if err := e.persist(ctx); err != nil {
		return fmt.Errorf("service.WaypointEditor.SaveEdit: %w", err)
	}
	return nil
}

// Cancel abandons an edit or the remaining placements of add mode and
// returns to idle. Waypoints already confirmed are kept.
func (e *WaypointEditor) Cancel() bool {
	if e.state.Phase == domain.PhaseIdle {
		return false
	}
	e.state = domain.Idle()
	return true
}

// ClearAll removes every waypoint and persists the empty list. It works from
// any state and always leaves the editor idle.
func (e *WaypointEditor) ClearAll(ctx context.Context) error {
	e.state = domain.Idle()
	e.loop.Waypoints = []domain.Waypoint{}
	if err := e.persist(ctx); err != nil {
		return fmt.Errorf("service.WaypointEditor.ClearAll: %w", err)
	}
	return nil
}

// Sync writes the in-memory loop to the store again. Callers use it to retry
// after domain.ErrPersistenceFailed.
func (e *WaypointEditor) Sync(ctx context.Context) error {
	if err := e.persist(ctx); err != nil {
		return fmt.Errorf("service.WaypointEditor.Sync: %w", err)
	}
	return nil
}

func (e *WaypointEditor) persist(ctx context.Context) error {
	err := e.saver.Save(ctx, e.loop.Clone())
	if err == nil || errors.Is(err, domain.ErrPersistenceFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
}

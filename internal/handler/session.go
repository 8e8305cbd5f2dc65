package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/service"
)

// StartAddingRequest is the body of POST .../session/adding.
type StartAddingRequest struct {
	Count int `json:"count"`
}

// ChoosePointRequest is the body of POST .../session/point.
type ChoosePointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WaypointDetailsRequest is the body of POST .../session/confirm and .../session/save.
type WaypointDetailsRequest struct {
	Label    string `json:"label"`
	StayHint string `json:"stayHint"`
}

// SelectWaypointRequest is the body of POST .../session/select.
type SelectWaypointRequest struct {
	WaypointId int64 `json:"waypointId"`
}

// SessionResponse is the editor state after a session request.
// Applied is false when the request was ignored in the current state.
type SessionResponse struct {
	State     domain.EditorState `json:"state"`
	Loop      Loop               `json:"loop"`
	Applied   bool               `json:"applied"`
	Waypoint  *Waypoint          `json:"waypoint,omitempty"`
	Completed bool               `json:"completed,omitempty"`
}

// sessionOp runs one editor transition and records its outcome in resp.
type sessionOp func(ctx context.Context, e *service.WaypointEditor, resp *SessionResponse) error

// GetSession handles GET /loops/{loopId}/session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.runSession(w, r, func(_ context.Context, _ *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = true
		return nil
	})
}

// StartAdding handles POST /loops/{loopId}/session/adding.
func (s *Server) StartAdding(w http.ResponseWriter, r *http.Request) {
	var body StartAddingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.runSession(w, r, func(_ context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = e.StartAdding(body.Count)
		return nil
	})
}

// ChoosePoint handles POST /loops/{loopId}/session/point.
func (s *Server) ChoosePoint(w http.ResponseWriter, r *http.Request) {
	var body ChoosePointRequest
	if !decodeBody(w, r, &body) {
		return
	}
	c := domain.Coordinate{Latitude: body.Latitude, Longitude: body.Longitude}
	if !c.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("latitude must be within ±90 and longitude within ±180"))
		return
	}
	s.runSession(w, r, func(_ context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = e.ChoosePoint(c)
		return nil
	})
}

// ConfirmPlacement handles POST /loops/{loopId}/session/confirm.
func (s *Server) ConfirmPlacement(w http.ResponseWriter, r *http.Request) {
	var body WaypointDetailsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.runSession(w, r, func(ctx context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		res, err := e.Confirm(ctx, body.Label, body.StayHint)
		resp.Applied = res.Appended
		resp.Completed = res.Completed
		if res.Appended {
			wp := waypointToResponse(res.Waypoint)
			resp.Waypoint = &wp
		}
		return err
	})
}

// SelectWaypoint handles POST /loops/{loopId}/session/select.
func (s *Server) SelectWaypoint(w http.ResponseWriter, r *http.Request) {
	var body SelectWaypointRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.runSession(w, r, func(_ context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = e.SelectWaypoint(body.WaypointId)
		return nil
	})
}

// SaveEdit handles POST /loops/{loopId}/session/save.
func (s *Server) SaveEdit(w http.ResponseWriter, r *http.Request) {
	var body WaypointDetailsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.runSession(w, r, func(ctx context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = e.State().Phase == domain.PhaseEditing
		return e.SaveEdit(ctx, body.Label, body.StayHint)
	})
}

// CancelSession handles POST /loops/{loopId}/session/cancel.
func (s *Server) CancelSession(w http.ResponseWriter, r *http.Request) {
	s.runSession(w, r, func(_ context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = e.Cancel()
		return nil
	})
}

// ClearWaypoints handles POST /loops/{loopId}/session/clear.
func (s *Server) ClearWaypoints(w http.ResponseWriter, r *http.Request) {
	s.runSession(w, r, func(ctx context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = true
		return e.ClearAll(ctx)
	})
}

// SyncSession handles POST /loops/{loopId}/session/sync, the retry after a
// persistence failure.
func (s *Server) SyncSession(w http.ResponseWriter, r *http.Request) {
	s.runSession(w, r, func(ctx context.Context, e *service.WaypointEditor, resp *SessionResponse) error {
		resp.Applied = true
		return e.Sync(ctx)
	})
}

// runSession opens the loop's session, applies op under the session lock and
// writes the resulting state. When op fails to persist, the state is still
// returned alongside the error so the client can show it and retry.
func (s *Server) runSession(w http.ResponseWriter, r *http.Request, op sessionOp) {
	id, err := loopIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	sess, err := s.sessions.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resp SessionResponse
	snap, err := sess.Apply(func(e *service.WaypointEditor) error {
		return op(r.Context(), e, &resp)
	})
	resp.State = snap.State
	resp.Loop = loopToResponse(snap.Loop)

	if err != nil {
		if !errors.Is(err, domain.ErrPersistenceFailed) {
			s.writeError(w, r, err)
			return
		}
		status, body := errorStatus(err)
		s.log.WarnContext(r.Context(), "session change not saved", "loop_id", id, "error", err)
		writeJSON(w, status, struct {
			ErrorResponse
			Session SessionResponse `json:"session"`
		}{body, resp})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

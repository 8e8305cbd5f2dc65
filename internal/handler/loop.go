package handler

import (
	"net/http"
	"time"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/service"
)

// CreateLoopRequest is the body of POST /loops.
type CreateLoopRequest struct {
	Name       string    `json:"name"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	ApproxStay *string   `json:"approxStay,omitempty"`
}

// Waypoint is the API representation of a domain.Waypoint.
type Waypoint struct {
	Id        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
	StayHint  string  `json:"stayHint,omitempty"`
	Order     int     `json:"order"`
}

// Loop is the API representation of a domain.Loop.
type Loop struct {
	Id         string     `json:"id"`
	Name       string     `json:"name"`
	StartAt    time.Time  `json:"startAt"`
	EndAt      time.Time  `json:"endAt"`
	ApproxStay string     `json:"approxStay,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Waypoints  []Waypoint `json:"waypoints"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// LoopList is the body of GET /loops.
type LoopList struct {
	Data       []Loop     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreatedLoop is the body of a successful POST /loops: the loop plus the
// link to send to invitees.
type CreatedLoop struct {
	Loop  Loop              `json:"loop"`
	Share service.ShareLink `json:"share"`
}

// CreateLoop handles POST /loops.
func (s *Server) CreateLoop(w http.ResponseWriter, r *http.Request) {
	var body CreateLoopRequest
	if !decodeBody(w, r, &body) {
		return
	}
	in := service.CreateLoopInput{Name: body.Name, StartAt: body.StartAt, EndAt: body.EndAt}
	if body.ApproxStay != nil {
		in.ApproxStay = *body.ApproxStay
	}

	created, err := s.loops.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreatedLoop{Loop: loopToResponse(created), Share: s.loops.ShareLinkFor(created)})
}

// ListLoops handles GET /loops.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListLoops(w http.ResponseWriter, r *http.Request) {
	params, err := paginationParams(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	loops, total, err := s.loops.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]Loop, len(loops))
	for i, l := range loops {
		data[i] = loopToResponse(l)
	}
	writeJSON(w, http.StatusOK, LoopList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetLoop handles GET /loops/{loopId}.
func (s *Server) GetLoop(w http.ResponseWriter, r *http.Request) {
	id, err := loopIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	l, err := s.loops.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loopToResponse(l))
}

// DeleteLoop handles DELETE /loops/{loopId}.
func (s *Server) DeleteLoop(w http.ResponseWriter, r *http.Request) {
	id, err := loopIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := s.loops.Discard(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.sessions != nil {
		s.sessions.Forget(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareLoop handles GET /loops/{loopId}/share.
func (s *Server) ShareLoop(w http.ResponseWriter, r *http.Request) {
	id, err := loopIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	link, err := s.loops.Share(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// --- mapping helpers --------------------------------------------------------

// loopToResponse converts a domain.Loop into its API representation.
func loopToResponse(l domain.Loop) Loop {
	resp := Loop{
		Id:         l.ID,
		Name:       l.Name,
		StartAt:    l.StartAt,
		EndAt:      l.EndAt,
		ApproxStay: l.ApproxStay,
		CreatedAt:  l.CreatedAt,
		Waypoints:  make([]Waypoint, len(l.Waypoints)),
	}
	for i, w := range l.Waypoints {
		resp.Waypoints[i] = waypointToResponse(w)
	}
	return resp
}

func waypointToResponse(w domain.Waypoint) Waypoint {
	return Waypoint{
		Id:        w.ID,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Label:     w.Label,
		StayHint:  w.StayHint,
		Order:     w.Order,
	}
}

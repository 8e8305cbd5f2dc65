package handler

import (
	"errors"
	"net/http"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/linkcodec"
)

// OpenLinkRequest is the body of POST /links/open.
type OpenLinkRequest struct {
	URL string `json:"url"`
}

// OpenLink handles POST /links/open: decode a pasted share link and return
// the loop it names, accepting it onto this device if it is new.
func (s *Server) OpenLink(w http.ResponseWriter, r *http.Request) {
	var body OpenLinkRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.URL == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("url is required"))
		return
	}
	l, err := s.loops.OpenLink(r.Context(), body.URL)
	s.writeResolved(w, r, l, err)
}

// DeepLink handles GET /loop/{loopId}?d=..., the path a share link lands on
// when served over HTTP(S).
func (s *Server) DeepLink(w http.ResponseWriter, r *http.Request) {
	id, err := loopIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	d, err := optionalQuery(r, linkcodec.QueryKey)
	if err != nil {
		badRequest(w, err)
		return
	}
	l, err := s.loops.Resolve(r.Context(), id, linkcodec.ParsePayload(d))
	s.writeResolved(w, r, l, err)
}

// writeResolved writes the outcome of resolving a link. A loop accepted from
// the link but not yet saved is still returned, under a 503.
func (s *Server) writeResolved(w http.ResponseWriter, r *http.Request, l domain.Loop, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, loopToResponse(l))
		return
	}
	if errors.Is(err, domain.ErrPersistenceFailed) && l.ID != "" {
		status, body := errorStatus(err)
		s.log.WarnContext(r.Context(), "accepted loop not saved", "loop_id", l.ID, "error", err)
		writeJSON(w, status, struct {
			ErrorResponse
			Loop Loop `json:"loop"`
		}{body, loopToResponse(l)})
		return
	}
	s.writeError(w, r, err)
}

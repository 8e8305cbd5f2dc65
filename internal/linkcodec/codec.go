// Package linkcodec converts a Loop to and from a self-contained share link.
//
// A link has the form <base>loop/<id>?d=<url-escaped JSON SharePayload>. The
// id in the path lets a receiver key its local store even when a transport
// strips the query; the payload lets a receiver with no record bootstrap the
// loop. Waypoints never travel in a link.
package linkcodec

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/loopspot/loopspot/internal/domain"
)

const (
	// PathSegment is the path element that precedes the loop id.
	PathSegment = "loop"
	// QueryKey is the query parameter carrying the payload.
	QueryKey = "d"

	// DateLayout and TimeLayout render the human-readable payload fields.
	DateLayout = "Jan 2, 2006"
	TimeLayout = "3:04 PM"
	// ISOLayout renders instants the way JavaScript's toISOString does.
	ISOLayout = "2006-01-02T15:04:05.000Z"
)

// Link is the result of decoding a share URL.
// Payload is nil when the query was absent or could not be parsed.
type Link struct {
	ID      string
	Payload *domain.SharePayload
}

// Codec encodes and decodes share links. It is immutable and safe for
// concurrent use.
type Codec struct {
	base string
	loc  *time.Location
}

// Option configures a Codec.
type Option func(*Codec)

// WithBaseURL replaces the scheme-only base with a full URL prefix such as
// "https://loops.example.com" or an Expo dev URL ending in "/--".
func WithBaseURL(base string) Option {
	return func(c *Codec) {
		if base == "" {
			return
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		c.base = base
	}
}

// WithLocation sets the zone used for the display date and time fields.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Codec) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// New returns a Codec producing <scheme>://loop/<id>?d=... links.
func New(scheme string, opts ...Option) *Codec {
	c := &Codec{base: scheme + "://", loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the zone used for display fields.
func (c *Codec) Location() *time.Location {
	return c.loc
}

// Payload derives the Share Payload for l.
func (c *Codec) Payload(l domain.Loop) domain.SharePayload {
	p := domain.SharePayload{
		ID:         l.ID,
		Name:       l.Name,
		ApproxStay: l.ApproxStay,
	}
	if !l.StartAt.IsZero() {
		start := l.StartAt.In(c.loc)
		p.StartDate = start.Format(DateLayout)
		p.StartTime = start.Format(TimeLayout)
		p.StartDateTime = l.StartAt.UTC().Format(ISOLayout)
	}
	if !l.EndAt.IsZero() {
		end := l.EndAt.In(c.loc)
		p.EndDate = end.Format(DateLayout)
		p.EndTime = end.Format(TimeLayout)
		p.EndDateTime = l.EndAt.UTC().Format(ISOLayout)
	}
	if !l.CreatedAt.IsZero() {
		p.CreatedAt = l.CreatedAt.UTC().Format(ISOLayout)
	}
	return p
}

// Encode builds the share URL for l.
func (c *Codec) Encode(l domain.Loop) string {
	// A struct of strings always marshals.
	data, _ := json.Marshal(c.Payload(l))
	return c.base + PathSegment + "/" + url.PathEscape(l.ID) + "?" + QueryKey + "=" + url.QueryEscape(string(data))
}

// Decode parses a share URL. It fails with domain.ErrMalformedLink only when
// no loop id can be found; an unreadable payload yields a Link with a nil
// Payload so the caller can still try its local store.
func (c *Codec) Decode(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Link{}, domain.ErrMalformedLink
	}

	id, ok := idFromSegments(segments(u))
	if !ok {
		return Link{}, domain.ErrMalformedLink
	}

	return Link{ID: id, Payload: ParsePayload(u.Query().Get(QueryKey))}, nil
}

// ParsePayload decodes the value of the d query parameter after the URL layer
// has unescaped it once. Links that were escaped twice are tolerated. Returns
// nil when d is empty or not a JSON object.
func ParsePayload(d string) *domain.SharePayload {
	if strings.TrimSpace(d) == "" {
		return nil
	}
	if p, ok := unmarshalPayload(d); ok {
		return p
	}
	if unescaped, err := url.QueryUnescape(d); err == nil && unescaped != d {
		if p, ok := unmarshalPayload(unescaped); ok {
			return p
		}
	}
	return nil
}

func unmarshalPayload(s string) (*domain.SharePayload, bool) {
	var p *domain.SharePayload
	if err := json.Unmarshal([]byte(s), &p); err != nil || p == nil {
		return nil, false
	}
	return p, true
}

// segments lists the host (for scheme://loop/<id> links) followed by the
// unescaped path elements.
func segments(u *url.URL) []string {
	var out []string
	if u.Host != "" {
		out = append(out, u.Host)
	}
	path := u.EscapedPath()
	if u.Opaque != "" {
		path = u.Opaque
	}
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(part); err == nil {
			part = unescaped
		}
		out = append(out, part)
	}
	return out
}

func idFromSegments(parts []string) (string, bool) {
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == PathSegment && strings.TrimSpace(parts[i+1]) != "" {
			return parts[i+1], true
		}
	}
	return "", false
}

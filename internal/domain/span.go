package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ContextProfileKey carries the active Profile through a request context.
const ContextProfileKey = "performanceProfile"

// Span is one timed stage of an execution.
type Span struct {
	Name    string `json:"name"`
	Elapsed *int64 `json:"elapsed"`

	startTs time.Time
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

// Profile collects the spans of one execution in order.
type Profile struct {
	Spans   []*Span
	TotalMs *int64

	startTs time.Time
}

func NewProfile() (newProfile *Profile, endProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}
	return newProfile, newProfile.End
}

// GetProfile returns the profile carried by ctx, or a fresh unattached one so
// profiled code never branches on callers that skipped seeding.
func GetProfile(ctx context.Context) (profile *Profile, endProfile func()) {
	profile, ok := ctx.Value(ContextProfileKey).(*Profile)
	if !ok || profile == nil {
		profile, _ = NewProfile()
	}
	return profile, profile.End
}

func (p *Profile) End() {
	t := time.Since(p.startTs).Milliseconds()
	if p.TotalMs == nil {
		p.TotalMs = &t
	}
}

// StartNewSpan ends the previous span and begins the next. Not safe for
// concurrent use.
func (p *Profile) StartNewSpan(name string) (newSpan *Span, endSpan func()) {
	newSpan = &Span{
		Name:    name,
		startTs: time.Now(),
	}
	if len(p.Spans) > 0 {
		p.Spans[len(p.Spans)-1].End()
	}
	p.Spans = append(p.Spans, newSpan)
	return newSpan, newSpan.End
}

// ToJsonBytes renders the ordered spans for logging.
func (p *Profile) ToJsonBytes() ([]byte, error) {
	return json.Marshal(p.Spans)
}

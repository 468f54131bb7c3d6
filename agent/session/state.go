package session

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrNilState       = errors.New("session state is nil")
)

// State is one conversation's lifetime state: the customer identity bound to
// the session and the model-call rate-limit window.
type State struct {
	SessionID string `json:"session_id"`

	// CustomerProfile is the serialized customer record the tenant check
	// validates tool arguments against. Empty until BindProfile.
	CustomerProfile string `json:"customer_profile,omitempty"`

	// Fixed-window rate limit counters for model calls.
	WindowStart  time.Time `json:"window_start,omitempty"`
	RequestCount int       `json:"request_count,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewState(sessionID string, now time.Time) *State {
	return &State{
		SessionID: strings.TrimSpace(sessionID),
		UpdatedAt: now.UTC(),
	}
}

func (s *State) HasProfile() bool {
	return s != nil && strings.TrimSpace(s.CustomerProfile) != ""
}

func (s *State) BindProfile(serialized string, now time.Time) {
	if s == nil {
		return
	}
	s.CustomerProfile = serialized
	s.Touch(now)
}

func (s *State) Touch(now time.Time) {
	if s == nil {
		return
	}
	s.UpdatedAt = now.UTC()
}

func (s *State) Validate() error {
	if s == nil {
		return ErrNilState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if s.RequestCount < 0 {
		return errors.New("request count must be >= 0")
	}
	return nil
}

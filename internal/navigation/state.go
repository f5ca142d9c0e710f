// Package navigation holds the per-client ephemeral state: the authentication
// flag, the active page and the working transcript of the open session.
package navigation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"memochat/internal/model"
)

// Page is one of the two screens an authenticated client can be on.
type Page string

const (
	PageSelectSession Page = "select_session"
	PageChat          Page = "chat"
)

// ErrInvalidTransition is returned when an action is not allowed from the current page.
var ErrInvalidTransition = errors.New("invalid page transition")

// Flash levels.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level string
	Text  string
}

// State is the context of a single client. Handlers hold its lock for the
// duration of an action, so each client performs one action at a time.
type State struct {
	sync.Mutex

	ID string

	Authenticated bool
	UserID        int64
	Username      string

	ActivePage          Page
	SessionID           string
	Messages            []model.Message
	LastUploadedImageID string

	Flash *Flash

	// LastSeen is guarded by the owning Store, not by the State lock.
	LastSeen time.Time
}

func newState(id string, now time.Time) *State {
	return &State{ID: id, LastSeen: now}
}

// Login marks the client authenticated and starts it on a fresh session picker.
func (s *State) Login(user *model.User) {
	s.Authenticated = true
	s.UserID = user.ID
	s.Username = user.Username
	s.ActivePage = PageSelectSession
	s.SessionID = ""
	s.Messages = nil
	s.LastUploadedImageID = ""
}

// StartNew opens a brand new session with an empty transcript.
func (s *State) StartNew() (string, error) {
	if !s.Authenticated || s.ActivePage != PageSelectSession {
		return "", ErrInvalidTransition
	}
	s.enterChat(NewSessionID(), []model.Message{})
	return s.SessionID, nil
}

// Resume opens a previously saved session with its loaded transcript.
func (s *State) Resume(sessionID string, messages []model.Message) error {
	if !s.Authenticated || s.ActivePage != PageSelectSession || sessionID == "" {
		return ErrInvalidTransition
	}
	if messages == nil {
		messages = []model.Message{}
	}
	s.enterChat(sessionID, messages)
	return nil
}

// Back leaves the chat view for the session picker.
func (s *State) Back() error {
	if !s.Authenticated || s.ActivePage != PageChat {
		return ErrInvalidTransition
	}
	s.ActivePage = PageSelectSession
	s.SessionID = ""
	s.Messages = nil
	s.LastUploadedImageID = ""
	return nil
}

// InChat reports whether the client has an open session.
func (s *State) InChat() bool {
	return s.Authenticated && s.ActivePage == PageChat
}

// SetFlash stores a message for the next rendered page.
func (s *State) SetFlash(level, text string) {
	s.Flash = &Flash{Level: level, Text: text}
}

// TakeFlash returns and clears the pending flash, if any.
func (s *State) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}

func (s *State) enterChat(sessionID string, messages []model.Message) {
	s.ActivePage = PageChat
	s.SessionID = sessionID
	s.Messages = messages
	s.LastUploadedImageID = ""
}

// NewSessionID returns a short random session identifier.
func NewSessionID() string {
	return uuid.NewString()[:8]
}

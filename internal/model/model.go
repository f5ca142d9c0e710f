package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the author of a message. The set is closed.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Content part types.
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// User is a registered account.
type User struct {
	ID           int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImageURL carries an inline image as a data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one element of a multi-part message body.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartTypeText, Text: text}
}

// ImagePart builds an image content part from a data URI.
func ImagePart(dataURI string) ContentPart {
	return ContentPart{Type: PartTypeImageURL, ImageURL: &ImageURL{URL: dataURI}}
}

// Content is either a plain string or an ordered list of parts.
// It marshals to exactly one of the two JSON shapes.
type Content struct {
	Text  string
	Parts []ContentPart
}

// TextContent wraps a plain string body.
func TextContent(text string) Content { return Content{Text: text} }

// PartsContent wraps a multi-part body.
func PartsContent(parts ...ContentPart) Content {
	if parts == nil {
		parts = []ContentPart{}
	}
	return Content{Parts: parts}
}

// IsParts reports whether the content is the multi-part variant.
func (c Content) IsParts() bool { return c.Parts != nil }

// PlainText renders the content as text. Image parts become "[image]".
func (c Content) PlainText() string {
	if !c.IsParts() {
		return c.Text
	}
	lines := make([]string, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch p.Type {
		case PartTypeText:
			lines = append(lines, p.Text)
		case PartTypeImageURL:
			lines = append(lines, "[image]")
		}
	}
	return strings.Join(lines, "\n")
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsParts() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}
	if data[0] == '[' {
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("decode content parts: %w", err)
		}
		if parts == nil {
			parts = []ContentPart{}
		}
		*c = Content{Parts: parts}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("content must be a string or a list of parts: %w", err)
	}
	*c = Content{Text: text}
	return nil
}

// Message is a single transcript entry.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// NewTextMessage is a shorthand for a plain-string message.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Content: TextContent(text)}
}

// Validate checks the message invariants: known role, and a non-empty,
// well-formed part list when the multi-part variant is used.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("unknown role %q", m.Role)
	}
	if !m.Content.IsParts() {
		return nil
	}
	if len(m.Content.Parts) == 0 {
		return errors.New("content part list is empty")
	}
	for i, p := range m.Content.Parts {
		switch p.Type {
		case PartTypeText:
		case PartTypeImageURL:
			if p.ImageURL == nil || !strings.HasPrefix(p.ImageURL.URL, "data:") {
				return fmt.Errorf("part %d: image_url must carry a data URI", i)
			}
		default:
			return fmt.Errorf("part %d: unknown type %q", i, p.Type)
		}
	}
	return nil
}

// SessionSummary is one row of the session picker.
type SessionSummary struct {
	SessionID string    `json:"session_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stream event names.
const (
	EventStart   = "start"
	EventDelta   = "delta"
	EventMessage = "message"
	EventEnd     = "end"
	EventError   = "error"
)

// StreamResponse is the structure for a single chunk in a streaming response.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Done      bool   `json:"done,omitempty"`
	Error     string `json:"error,omitempty"`
}

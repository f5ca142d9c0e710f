package api

import "net/http"

// User-visible messages.
const (
	msgRegistered        = "Registered! Please log in."
	msgDuplicateUsername = "Username already exists."
	msgInvalidLogin      = "Invalid login."
	msgNoSessions        = "No previous sessions found."
)

// CredentialsForm is posted by the login and register forms.
type CredentialsForm struct {
	Username string `form:"username" validate:"required,min=1,max=64"`
	Password string `form:"password" validate:"required,min=1,max=128"`
}

// ResumeForm selects a previous session.
type ResumeForm struct {
	SessionID string `form:"session_id" validate:"required,max=64"`
}

// MessageForm carries one chat input submission.
type MessageForm struct {
	Content string `form:"content" validate:"required,max=32000"`
}

func parseCredentials(r *http.Request) (CredentialsForm, error) {
	if err := r.ParseForm(); err != nil {
		return CredentialsForm{}, err
	}
	return CredentialsForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}, nil
}

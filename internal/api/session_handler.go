package api

import (
	"log/slog"
	"net/http"

	"memochat/internal/interfaces"
	"memochat/internal/navigation"
)

// SessionHandler moves a client between the session picker and the chat view.
type SessionHandler struct {
	history  interfaces.HistoryService
	renderer *Renderer
}

func NewSessionHandler(history interfaces.HistoryService, renderer *Renderer) *SessionHandler {
	return &SessionHandler{history: history, renderer: renderer}
}

// HandleHome redirects to the page the client is currently on.
func (h *SessionHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	switch {
	case !st.Authenticated:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case st.InChat():
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
	}
}

// ShowSessions renders the session picker.
func (h *SessionHandler) ShowSessions(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if st.InChat() {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	sessions, err := h.history.ListSessions(r.Context(), st.UserID)
	if err != nil {
		slog.Error("Could not list sessions", "user_id", st.UserID, "error", err)
		code, message := errorStatus(err)
		http.Error(w, message, code)
		return
	}

	options := make([]sessionOption, len(sessions))
	for i, s := range sessions {
		options[i] = sessionOption{ID: s.SessionID, Label: sessionLabel(s)}
	}
	h.renderer.render(w, http.StatusOK, "sessions", sessionsPage{
		basePage: basePage{Title: "Select Conversation", Flash: st.TakeFlash()},
		Username: st.Username,
		Sessions: options,
		Empty:    msgNoSessions,
	})
}

// HandleStartNew opens an empty session with a fresh id.
func (h *SessionHandler) HandleStartNew(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	sessionID, err := st.StartNew()
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	slog.Info("Started new session", "user_id", st.UserID, "session_id", sessionID)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// HandleResume loads a saved transcript and opens it.
func (h *SessionHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		st.SetFlash(navigation.FlashError, "Please select a session.")
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
		return
	}
	form := ResumeForm{SessionID: r.PostForm.Get("session_id")}
	if err := validateRequest(form); err != nil {
		st.SetFlash(navigation.FlashError, "Please select a session.")
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
		return
	}

	messages, err := h.history.LoadSession(r.Context(), st.UserID, form.SessionID)
	if err != nil {
		slog.Error("Could not load session", "user_id", st.UserID, "session_id", form.SessionID, "error", err)
		_, message := errorStatus(err)
		st.SetFlash(navigation.FlashError, message)
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
		return
	}

	if err := st.Resume(form.SessionID, messages); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// ShowChat renders the open session.
func (h *SessionHandler) ShowChat(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if !st.InChat() {
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
		return
	}
	h.renderer.render(w, http.StatusOK, "chat", chatPage{
		basePage:  basePage{Title: "Chatbot", Flash: st.TakeFlash()},
		Username:  st.Username,
		SessionID: st.SessionID,
		Messages:  toMessageViews(st.Messages),
	})
}

// HandleBack returns from the chat view to the session picker.
func (h *SessionHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if err := st.Back(); err != nil {
		slog.Debug("Back ignored", "page", st.ActivePage, "error", err)
	}
	http.Redirect(w, r, "/sessions", http.StatusSeeOther)
}

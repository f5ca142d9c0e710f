package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "memochat/internal/errors"
	"memochat/internal/interfaces"
	"memochat/internal/navigation"
)

// AuthHandler serves the login/register form and logout.
type AuthHandler struct {
	service  interfaces.AuthService
	store    *navigation.Store
	renderer *Renderer
}

func NewAuthHandler(svc interfaces.AuthService, store *navigation.Store, renderer *Renderer) *AuthHandler {
	return &AuthHandler{service: svc, store: store, renderer: renderer}
}

// ShowLogin renders the form. `?mode=register` switches it to registration.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if st.Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.render(w, http.StatusOK, "login", loginPage{
		basePage: basePage{Title: "Login / Register", Flash: st.TakeFlash()},
		Register: r.URL.Query().Get("mode") == "register",
	})
}

// HandleLogin godoc
// @Summary      Log in
// @Description  Checks the credentials and opens the session picker. Failures return to the form with "Invalid login.".
// @Tags         Auth
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Router       /login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	form, err := h.readCredentials(r)
	if err != nil {
		st.SetFlash(navigation.FlashError, msgInvalidLogin)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, app_errors.ErrAuthFailure) {
			slog.Error("Login failed", "username", form.Username, "error", err)
			_, message := errorStatus(err)
			st.SetFlash(navigation.FlashError, message)
		} else {
			st.SetFlash(navigation.FlashError, msgInvalidLogin)
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	st.Login(user)
	st.SetFlash(navigation.FlashSuccess, fmt.Sprintf("Welcome %s", user.Username))
	slog.Info("User logged in", "user_id", user.ID)
	http.Redirect(w, r, "/sessions", http.StatusSeeOther)
}

// HandleRegister godoc
// @Summary      Register
// @Description  Creates an account. The user still has to log in afterwards.
// @Tags         Auth
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Router       /register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	form, err := h.readCredentials(r)
	if err != nil {
		_, message := errorStatus(err)
		st.SetFlash(navigation.FlashError, message)
		http.Redirect(w, r, "/login?mode=register", http.StatusSeeOther)
		return
	}

	if _, err := h.service.Register(r.Context(), form.Username, form.Password); err != nil {
		_, message := errorStatus(err)
		st.SetFlash(navigation.FlashError, message)
		http.Redirect(w, r, "/login?mode=register", http.StatusSeeOther)
		return
	}

	st.SetFlash(navigation.FlashSuccess, msgRegistered)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleLogout discards all state held for the client.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if st.Authenticated {
		slog.Info("User logged out", "user_id", st.UserID)
	}
	h.store.Reset(st.ID)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) readCredentials(r *http.Request) (CredentialsForm, error) {
	form, err := parseCredentials(r)
	if err != nil {
		return form, fmt.Errorf("%w: malformed form: %s", app_errors.ErrValidation, err.Error())
	}
	if err := validateRequest(form); err != nil {
		return form, err
	}
	return form, nil
}

package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"memochat/internal/model"
	"memochat/internal/navigation"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the embedded HTML pages.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	rd := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"login", "sessions", "chat"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		rd.pages[page] = tmpl
	}
	return rd, nil
}

func (rd *Renderer) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		slog.Error("Unknown page template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Failed to render page", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Failed to write page", "page", page, "error", err)
	}
}

type basePage struct {
	Title string
	Flash *navigation.Flash
}

type loginPage struct {
	basePage
	Register bool
}

type sessionOption struct {
	ID    string
	Label string
}

type sessionsPage struct {
	basePage
	Username string
	Sessions []sessionOption
	Empty    string
}

type partView struct {
	Text  string
	Image template.URL
}

type messageView struct {
	Role  string
	Parts []partView
}

type chatPage struct {
	basePage
	Username  string
	SessionID string
	Messages  []messageView
}

func sessionLabel(s model.SessionSummary) string {
	return fmt.Sprintf("%s (Last: %s)", s.SessionID, s.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func toMessageViews(msgs []model.Message) []messageView {
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			continue
		}
		v := messageView{Role: string(m.Role)}
		if !m.Content.IsParts() {
			v.Parts = []partView{{Text: m.Content.Text}}
			views = append(views, v)
			continue
		}
		for _, p := range m.Content.Parts {
			switch {
			case p.Type == model.PartTypeText:
				v.Parts = append(v.Parts, partView{Text: p.Text})
			case p.Type == model.PartTypeImageURL && p.ImageURL != nil && strings.HasPrefix(p.ImageURL.URL, "data:image/"):
				// Data URIs are blocked by html/template unless marked safe.
				v.Parts = append(v.Parts, partView{Image: template.URL(p.ImageURL.URL)}) // #nosec G203
			}
		}
		views = append(views, v)
	}
	return views
}

package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	appLog "tripcal/internal/log"
)

//go:embed templates/calendar.html
var templatesFS embed.FS

var calendarTemplate = template.Must(template.ParseFS(templatesFS, "templates/calendar.html"))

// handlePage renders the calendar page. The root element carries
// data-ready="true" once the first load finished, which is what the
// headless capture waits for.
func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "calendar.html", s.snapshot()); err != nil {
		appLog.Error("calendar page render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// handleIntentForm serves the page's buttons and day links: apply the
// intent, then redirect back to /calendar.
func (s *Server) handleIntentForm(w http.ResponseWriter, r *http.Request) {
	if err := s.applyIntent(r.PathValue("intent"), r); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errUnknownIntent) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tripcal/internal/calendar"
	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var errUnknownIntent = errors.New("unknown intent")

// snapshotResponse is the JSON shape of GET /api/calendar and of every
// intent response. The /calendar template renders the same value.
type snapshotResponse struct {
	State     string     `json:"state"`
	Ready     bool       `json:"ready"`
	Error     string     `json:"error,omitempty"`
	Timezone  string     `json:"timezone"`
	WeekStart string     `json:"week_start"`
	Today     string     `json:"today"`
	Selected  string     `json:"selected,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	Grid      gridDTO    `json:"grid"`
	List      *listDTO   `json:"list,omitempty"`
}

type gridDTO struct {
	Month    string    `json:"month"`
	Title    string    `json:"title"`
	Weekdays []string  `json:"weekdays"`
	Cells    []cellDTO `json:"cells,omitempty"`
}

type cellDTO struct {
	Empty      bool   `json:"empty"`
	Date       string `json:"date,omitempty"`
	Day        int    `json:"day,omitempty"`
	HasEvent   bool   `json:"has_event"`
	EventCount int    `json:"event_count"`
	Selected   bool   `json:"selected"`
	Today      bool   `json:"today"`
}

type listDTO struct {
	Mode         string     `json:"mode"`
	Header       string     `json:"header"`
	EmptyMessage string     `json:"empty_message"`
	Events       []eventDTO `json:"events"`
}

// eventDTO carries an event plus its display attributes.
type eventDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Day         string    `json:"day"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	TypeColor   string    `json:"type_color"`
	TypeIcon    string    `json:"type_icon"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	StatusColor string    `json:"status_color"`
}

func (s *Server) snapshot() snapshotResponse {
	snap := s.view.Snapshot()

	resp := snapshotResponse{
		State:     string(snap.State),
		Ready:     snap.State != calendar.StateLoading,
		Error:     snap.Error,
		Timezone:  s.cfg.Location().String(),
		WeekStart: s.cfg.WeekStart,
		Today:     snap.Today.Format(dayLayout),
		Grid: gridDTO{
			Month:    snap.Grid.Month.Format(monthLayout),
			Title:    snap.Grid.Title,
			Weekdays: snap.Grid.Weekdays,
		},
	}
	if snap.Selected != nil {
		resp.Selected = snap.Selected.Format(dayLayout)
	}
	if !snap.LoadedAt.IsZero() {
		at := snap.LoadedAt
		resp.LoadedAt = &at
	}
	if snap.Grid.Cells == nil {
		return resp
	}

	resp.Grid.Cells = make([]cellDTO, len(snap.Grid.Cells))
	for i, c := range snap.Grid.Cells {
		dto := cellDTO{Empty: c.Empty}
		if !c.Empty {
			dto.Date = c.Date.Format(dayLayout)
			dto.Day = c.Day
			dto.HasEvent = c.HasEvent
			dto.EventCount = c.EventCount
			dto.Selected = c.Selected
			dto.Today = c.Today
		}
		resp.Grid.Cells[i] = dto
	}

	list := &listDTO{
		Mode:         string(snap.List.Mode),
		Header:       snap.List.Header,
		EmptyMessage: snap.List.EmptyMessage,
		Events:       make([]eventDTO, 0, len(snap.List.Events)),
	}
	for _, ev := range snap.List.Events {
		list.Events = append(list.Events, toEventDTO(ev))
	}
	resp.List = list
	return resp
}

func toEventDTO(ev model.Event) eventDTO {
	return eventDTO{
		ID:          ev.ID,
		Title:       ev.Title,
		Date:        ev.Date,
		Day:         ev.Date.Format("January 2, 2006"),
		Location:    ev.Location,
		Type:        string(ev.Type),
		TypeColor:   ev.Type.Color(),
		TypeIcon:    ev.Type.Icon(),
		Status:      string(ev.Status),
		StatusLabel: ev.Status.Label(),
		StatusColor: ev.Status.Color(),
	}
}

// applyIntent performs the navigation intent named by the {intent} path
// segment. Input errors are returned before the view is touched.
//
//	select ?date=2006-01-02   select a day (and show its month)
//	clear                     drop the selection
//	prev, next                move the displayed month
//	today                     show today's month
//	month  ?month=2006-01     show a given month
func (s *Server) applyIntent(name string, r *http.Request) error {
	loc := s.cfg.Location()

	switch name {
	case "select":
		raw := strings.TrimSpace(r.FormValue("date"))
		if raw == "" {
			return errors.New("missing date parameter")
		}
		d, err := time.ParseInLocation(dayLayout, raw, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
		}
		s.view.SelectDay(d)
	case "clear":
		s.view.ClearSelection()
	case "prev":
		s.view.GoToPreviousMonth()
	case "next":
		s.view.GoToNextMonth()
	case "today":
		s.view.GoToToday()
	case "month":
		raw := strings.TrimSpace(r.FormValue("month"))
		m, err := time.ParseInLocation(monthLayout, raw, loc)
		if err != nil {
			return fmt.Errorf("invalid month %q: expected YYYY-MM", raw)
		}
		s.view.ShowMonth(m)
	default:
		return errUnknownIntent
	}

	s.metrics.Intent(name)
	appLog.Debug("calendar intent applied", "intent", name)
	return nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleIntentAPI serves POST /api/calendar/{intent} and answers with the
// resulting snapshot.
func (s *Server) handleIntentAPI(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("intent")
	if err := s.applyIntent(name, r); err != nil {
		if errors.Is(err, errUnknownIntent) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown intent %q", name))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleRefresh serves POST /api/refresh: reload the event source now.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}

	err := s.reloader.Reload(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.snapshot())
	case errors.Is(err, calendar.ErrSuperseded):
		writeError(w, http.StatusConflict, "a newer refresh is in progress")
	case errors.Is(err, calendar.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "calendar is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		appLog.Debug("api refresh abandoned", "reason", err.Error())
		writeError(w, http.StatusServiceUnavailable, "refresh cancelled")
	default:
		appLog.Error("api refresh failed", err, "source", s.reloader.SourceName())
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

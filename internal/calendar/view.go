package calendar

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

// EventSource loads the event collection shown by a View. It may block and
// may fail; on failure it must not return a partial collection.
type EventSource interface {
	LoadEvents(ctx context.Context) ([]model.Event, error)
}

// LoadState describes where the view is in its load lifecycle.
type LoadState string

const (
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "failed"
)

// ListMode tells whether the visible list holds every event or one day.
type ListMode string

const (
	ModeAll ListMode = "all"
	ModeDay ListMode = "day"
)

var (
	// ErrClosed is returned by Load once the view has been closed.
	ErrClosed = errors.New("calendar: view closed")
	// ErrSuperseded is returned by Load when a newer load started while it
	// was in flight; its result is dropped.
	ErrSuperseded = errors.New("calendar: load superseded")
)

// Options configures a View. Zero values select local time, Sunday-first
// weeks and time.Now.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	Now       func() time.Time
}

// View holds the calendar screen state: the displayed month, the optional
// selected day and the event collection. Every exported method is an atomic
// state transition and is safe for concurrent use.
type View struct {
	mu sync.Mutex

	loc       *time.Location
	weekStart time.Weekday
	now       func() time.Time

	currentMonth time.Time
	selected     *time.Time

	events   []model.Event
	state    LoadState
	loadErr  string
	loadedAt time.Time
	loaded   bool

	gen    uint64
	closed bool
}

// NewView creates a view showing today's month with no selection. The view
// is in StateLoading until the first Load completes.
func NewView(opts Options) *View {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	v := &View{
		loc:       opts.Location,
		weekStart: opts.WeekStart,
		now:       opts.Now,
		state:     StateLoading,
	}
	v.currentMonth = v.today()
	return v
}

func (v *View) today() time.Time {
	y, m, d := v.now().In(v.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, v.loc)
}

// normalizeDay keeps the calendar-day identity of t and moves it to
// midnight in the view's location.
func (v *View) normalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, v.loc)
}

// Load fetches the event collection from src. The lock is not held while
// src runs. A result is dropped when the view was closed, when ctx was
// cancelled, or when another Load started in the meantime. A source error
// empties the collection and moves the view to StateFailed.
func (v *View) Load(ctx context.Context, src EventSource) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	start := time.Now()
	events, err := src.LoadEvents(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.closed:
		appLog.Debug("calendar: dropping load result, view closed")
		return ErrClosed
	case ctx.Err() != nil:
		appLog.Debug("calendar: dropping load result, context done", "ctx_err", ctx.Err())
		return ctx.Err()
	case gen != v.gen:
		appLog.Debug("calendar: dropping superseded load result", "gen", gen, "current_gen", v.gen)
		return ErrSuperseded
	}

	v.loaded = true
	v.loadedAt = v.now()

	if err != nil {
		v.events = nil
		v.state = StateFailed
		v.loadErr = err.Error()
		appLog.Error("calendar: event load failed", err, "duration", time.Since(start))
		return err
	}

	v.events = slices.Clone(events)
	v.state = StateReady
	v.loadErr = ""

	if bad := countMalformed(v.events); bad > 0 {
		appLog.Warn("calendar: events without a usable date are hidden", "count", bad)
	}
	appLog.Info("calendar: events loaded", "count", len(v.events), "duration", time.Since(start))
	return nil
}

// Close tears the view down. In-flight loads are discarded.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// SelectDay selects the calendar day of date and shows its month.
// Selecting the same day again is a no-op.
func (v *View) SelectDay(date time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	day := v.normalizeDay(date)
	v.selected = &day
	if !SameMonth(v.currentMonth, day) {
		v.currentMonth = day
	}
}

// ClearSelection returns the list to the all-events view.
func (v *View) ClearSelection() {
	v.mu.Lock()
	v.selected = nil
	v.mu.Unlock()
}

// GoToPreviousMonth shows the previous calendar month.
func (v *View) GoToPreviousMonth() {
	v.mu.Lock()
	v.currentMonth = PreviousMonth(v.currentMonth)
	v.mu.Unlock()
}

// GoToNextMonth shows the next calendar month.
func (v *View) GoToNextMonth() {
	v.mu.Lock()
	v.currentMonth = NextMonth(v.currentMonth)
	v.mu.Unlock()
}

// GoToToday shows the month containing today. The selection is kept.
func (v *View) GoToToday() {
	v.mu.Lock()
	v.currentMonth = v.today()
	v.mu.Unlock()
}

// ShowMonth shows the month containing t.
func (v *View) ShowMonth(t time.Time) {
	v.mu.Lock()
	v.currentMonth = v.normalizeDay(t)
	v.mu.Unlock()
}

// CurrentMonth returns the date that anchors the displayed month.
func (v *View) CurrentMonth() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentMonth
}

// SelectedDate returns the selected day, if any.
func (v *View) SelectedDate() (time.Time, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return time.Time{}, false
	}
	return *v.selected, true
}

// State returns the load state.
func (v *View) State() LoadState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// EventCount returns the size of the loaded collection, malformed records
// included.
func (v *View) EventCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.events)
}

// DayCell is a grid cell decorated for rendering.
type DayCell struct {
	Empty      bool
	Date       time.Time
	Day        int
	HasEvent   bool
	EventCount int
	Selected   bool
	Today      bool
}

// Grid is the month grid render contract.
type Grid struct {
	Month    time.Time
	Title    string
	Weekdays []string
	Cells    []DayCell
}

// List is the event list render contract.
type List struct {
	Mode         ListMode
	Header       string
	EmptyMessage string
	Events       []model.Event
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	State    LoadState
	Error    string
	Today    time.Time
	Selected *time.Time
	LoadedAt time.Time
	Grid     Grid
	List     List
}

// Snapshot computes the current render contracts. While the first load is
// still running only the month header is filled in.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	today := v.today()
	snap := Snapshot{
		State:    v.state,
		Error:    v.loadErr,
		Today:    today,
		LoadedAt: v.loadedAt,
		Grid: Grid{
			Month:    StartOfMonth(v.currentMonth),
			Title:    MonthTitle(v.currentMonth),
			Weekdays: WeekdayNames(v.weekStart),
		},
	}
	if v.selected != nil {
		sel := *v.selected
		snap.Selected = &sel
	}
	if !v.loaded {
		return snap
	}

	cells := BuildMonthGridFrom(v.currentMonth, v.weekStart)
	counts := CountByDay(v.events, cells)
	snap.Grid.Cells = make([]DayCell, len(cells))
	for i, c := range cells {
		dc := DayCell{Empty: c.Empty}
		if !c.Empty {
			dc.Date = c.Date
			dc.Day = c.Day()
			dc.EventCount = counts[i]
			dc.HasEvent = counts[i] > 0
			dc.Selected = v.selected != nil && SameDay(c.Date, *v.selected)
			dc.Today = SameDay(c.Date, today)
		}
		snap.Grid.Cells[i] = dc
	}

	mode := ModeAll
	if v.selected != nil {
		mode = ModeDay
	}
	snap.List = List{
		Mode:         mode,
		Header:       ListHeader(snap.Selected),
		EmptyMessage: EmptyMessage(snap.Selected),
		Events:       VisibleEvents(v.events, snap.Selected),
	}
	return snap
}

// Package api implements the daybook JSON endpoints.
//
// Reads of a day go through the propagation engine, list membership writes
// go through the membership enforcer, and backup endpoints delegate to the
// export and import packages. Everything else is plain store access.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dailyworkspace/daybook/internal/backup"
	"github.com/dailyworkspace/daybook/internal/membership"
	"github.com/dailyworkspace/daybook/internal/propagate"
	"github.com/dailyworkspace/daybook/internal/report"
	"github.com/dailyworkspace/daybook/internal/storage"
)

// Config wires the engines used by the handlers.
type Config struct {
	Store          storage.Storage
	Notes          *propagate.Propagator
	Members        *membership.Enforcer
	Reports        *report.Generator
	ImportMaxBytes int64
}

// Server holds the handlers.
type Server struct {
	store          storage.Storage
	notes          *propagate.Propagator
	members        *membership.Enforcer
	reports        *report.Generator
	importMaxBytes int64
	now            func() time.Time
}

// New returns a Server. Engines left nil in cfg get their defaults.
func New(cfg Config) *Server {
	s := &Server{
		store:          cfg.Store,
		notes:          cfg.Notes,
		members:        cfg.Members,
		reports:        cfg.Reports,
		importMaxBytes: cfg.ImportMaxBytes,
		now:            time.Now,
	}
	if s.notes == nil {
		s.notes = propagate.New(cfg.Store, propagate.DefaultOptions())
	}
	if s.members == nil {
		s.members = membership.New(cfg.Store, nil)
	}
	if s.reports == nil {
		s.reports = report.New(cfg.Store, report.DefaultWeekStart)
	}
	if s.importMaxBytes <= 0 {
		s.importMaxBytes = backup.DefaultMaxBytes
	}
	return s
}

// Register installs every route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	// Notes
	mux.HandleFunc("GET /api/notes", s.listNotes)
	mux.HandleFunc("GET /api/notes/{date}", s.getNote)
	mux.HandleFunc("PUT /api/notes/{date}", s.updateNote)
	mux.HandleFunc("DELETE /api/notes/{date}", s.deleteNote)
	mux.HandleFunc("POST /api/notes/{date}/entries", s.createEntry)
	mux.HandleFunc("POST /api/notes/{date}/labels/{labelID}", s.addNoteLabel)
	mux.HandleFunc("DELETE /api/notes/{date}/labels/{labelID}", s.removeNoteLabel)

	// Entries
	mux.HandleFunc("GET /api/entries/{id}", s.getEntry)
	mux.HandleFunc("PATCH /api/entries/{id}", s.updateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.deleteEntry)
	mux.HandleFunc("POST /api/entries/{id}/toggle-pin", s.togglePin)
	mux.HandleFunc("GET /api/entries/{id}/lists", s.entryLists)
	mux.HandleFunc("POST /api/entries/{id}/labels/{labelID}", s.addEntryLabel)
	mux.HandleFunc("DELETE /api/entries/{id}/labels/{labelID}", s.removeEntryLabel)

	// Labels
	mux.HandleFunc("GET /api/labels", s.listLabels)
	mux.HandleFunc("POST /api/labels", s.createLabel)
	mux.HandleFunc("DELETE /api/labels/{id}", s.deleteLabel)

	// Lists and membership
	mux.HandleFunc("GET /api/lists", s.listLists)
	mux.HandleFunc("POST /api/lists", s.createList)
	mux.HandleFunc("PUT /api/lists/reorder", s.reorderLists)
	mux.HandleFunc("GET /api/lists/{id}", s.getList)
	mux.HandleFunc("PUT /api/lists/{id}", s.updateList)
	mux.HandleFunc("DELETE /api/lists/{id}", s.deleteList)
	mux.HandleFunc("PUT /api/lists/{id}/reorder", s.reorderListEntries)
	mux.HandleFunc("POST /api/lists/{id}/entries/{entryID}", s.addListEntry)
	mux.HandleFunc("DELETE /api/lists/{id}/entries/{entryID}", s.removeListEntry)

	// Kanban
	mux.HandleFunc("GET /api/kanban", s.kanbanBoard)
	mux.HandleFunc("POST /api/kanban/initialize", s.initKanban)
	mux.HandleFunc("PUT /api/kanban/reorder", s.reorderKanban)

	// Backup
	mux.HandleFunc("GET /api/backup/export", s.exportBackup)
	mux.HandleFunc("POST /api/backup/import", s.importBackup)

	// Reports
	mux.HandleFunc("GET /api/reports/generate", s.weeklyReport)
	mux.HandleFunc("GET /api/reports/all-entries", s.allEntriesReport)
	mux.HandleFunc("GET /api/reports/weeks", s.reportWeeks)

	// Goals
	mux.HandleFunc("GET /api/goals/{kind}", s.listGoals)
	mux.HandleFunc("POST /api/goals/{kind}", s.createGoal)
	mux.HandleFunc("GET /api/goals/{kind}/current", s.currentGoal)
	mux.HandleFunc("PUT /api/goals/{kind}/{id}", s.updateGoal)
	mux.HandleFunc("DELETE /api/goals/{kind}/{id}", s.deleteGoal)

	// Search history
	mux.HandleFunc("GET /api/search-history", s.listSearchHistory)
	mux.HandleFunc("POST /api/search-history", s.addSearchHistory)
	mux.HandleFunc("DELETE /api/search-history", s.clearSearchHistory)

	// Settings
	mux.HandleFunc("GET /api/settings", s.getSettings)
	mux.HandleFunc("PATCH /api/settings", s.updateSettings)
}

// pathID parses a numeric path value, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "invalid "+name, raw)
		return 0, false
	}
	return id, true
}

type message struct {
	Message string `json:"message"`
}

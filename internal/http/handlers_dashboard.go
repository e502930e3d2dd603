package http

import (
	"context"
	"errors"
	"net/http"

	"equanima/internal/core"
	applog "equanima/internal/log"
)

type moodOption struct {
	Value core.Mood
	Label string
	Emoji string
}

type dashboardData struct {
	Overview   core.Overview
	Moods      []moodOption
	CommonTags []string
	Today      string
	MaxScore   int
	MaxLevel   int

	// Set when the entry form was rejected.
	FormError  string
	FormFields map[string]string
}

func moodOptions() []moodOption {
	out := make([]moodOption, 0, len(core.Moods))
	for i := len(core.Moods) - 1; i >= 0; i-- {
		m := core.Moods[i]
		out = append(out, moodOption{Value: m, Label: m.Label(), Emoji: m.Emoji()})
	}
	return out
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, dashboardData{})
}

// renderDashboard fills in the journal views and writes the page with status.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, data dashboardData) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	ov, err := s.journal.Overview(ctx, parseRecent(r))
	if err != nil {
		s.httpLog.LogError(ctx, "Failed to build dashboard", err, applog.ComponentJournal, applog.OpRead, nil)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	data.Overview = ov
	data.Moods = moodOptions()
	data.CommonTags = core.CommonTags
	data.Today = s.today().String()
	data.MaxScore = core.MaxMoodScore
	data.MaxLevel = core.MaxLevel

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.httpLog.LogError(ctx, "Dashboard template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
	}
}

// handleCreateEntryForm accepts the dashboard form. Success redirects back to
// the dashboard; a rejected form re-renders it with the problems listed.
func (s *Server) handleCreateEntryForm(w http.ResponseWriter, r *http.Request) {
	ne, err := s.parseEntryRequest(w, r, s.today())
	if err != nil {
		logRejected(r, err)
		var fields fieldErrors
		if errors.As(err, &fields) {
			s.renderDashboard(w, r, http.StatusUnprocessableEntity, dashboardData{
				FormError:  "The entry was not saved. Please fix the fields below.",
				FormFields: fields,
			})
			return
		}
		s.renderDashboard(w, r, http.StatusBadRequest, dashboardData{
			FormError: "The form could not be read. Please try again.",
		})
		return
	}

	if _, err := s.storeEntry(r, ne); err != nil {
		s.httpLog.LogError(r.Context(), "Failed to add entry", err, applog.ComponentJournal, applog.OpCreate, nil)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDeleteEntryForm lets the plain HTML page delete without script.
func (s *Server) handleDeleteEntryForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	if err := s.journal.DeleteEntry(ctx, r.PathValue("id")); err != nil {
		s.httpLog.LogError(ctx, "Failed to delete entry", err, applog.ComponentJournal, applog.OpDelete, nil)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package http

import (
	"context"
	"errors"
	"net/http"

	"equanima/internal/core"
	applog "equanima/internal/log"
)

// respondParseError writes 400 for undecodable bodies and 422 for
// validation failures.
func (s *Server) respondParseError(w http.ResponseWriter, r *http.Request, err error) {
	var fields fieldErrors
	switch {
	case errors.As(err, &fields):
		writeError(w, r, http.StatusUnprocessableEntity, "validation failed", fields)
	case errors.Is(err, errMalformedBody):
		writeError(w, r, http.StatusBadRequest, "malformed request body", nil)
	default:
		writeError(w, r, http.StatusBadRequest, err.Error(), nil)
	}
}

func (s *Server) respondStorageError(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	s.httpLog.LogError(r.Context(), msg, err, applog.ComponentJournal, op, nil)
	writeError(w, r, http.StatusInternalServerError, "storage unavailable", nil)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	entries, err := s.journal.Entries(ctx)
	if err != nil {
		s.respondStorageError(w, r, "Failed to list entries", err, applog.OpList)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// logRejected records why an entry was not accepted.
func logRejected(r *http.Request, err error) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected mood entry",
		applog.FieldOperation, applog.OpValidate,
		applog.FieldError, err)
}

// storeEntry adds a parsed entry to the journal.
func (s *Server) storeEntry(r *http.Request, ne core.NewEntry) (core.MoodEntry, error) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	entry, err := s.journal.AddEntry(ctx, ne)
	if err != nil {
		return core.MoodEntry{}, err
	}
	s.httpLog.LogEntryCreated(ctx, entry.ID, entry.Date.String(), string(entry.Mood), entry.Energy, entry.Anxiety)
	return entry, nil
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ne, err := s.parseEntryRequest(w, r, s.today())
	if err != nil {
		logRejected(r, err)
		s.respondParseError(w, r, err)
		return
	}

	entry, err := s.storeEntry(r, ne)
	if err != nil {
		s.respondStorageError(w, r, "Failed to add entry", err, applog.OpCreate)
		return
	}
	w.Header().Set("Location", "/api/entries/"+entry.ID)
	writeJSON(w, r, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	entry, ok, err := s.journal.Entry(ctx, r.PathValue("id"))
	if err != nil {
		s.respondStorageError(w, r, "Failed to read entry", err, applog.OpRead)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "entry not found", nil)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

// handleUpdateEntry answers 204 even for an unknown id; the journal treats
// that as a no-op.
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	patch, err := s.parsePatchRequest(w, r)
	if err != nil {
		s.respondParseError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	if err := s.journal.UpdateEntry(ctx, r.PathValue("id"), patch); err != nil {
		s.respondStorageError(w, r, "Failed to update entry", err, applog.OpUpdate)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	if err := s.journal.DeleteEntry(ctx, r.PathValue("id")); err != nil {
		s.respondStorageError(w, r, "Failed to delete entry", err, applog.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	week, err := s.journal.WeeklyData(ctx)
	if err != nil {
		s.respondStorageError(w, r, "Failed to build weekly series", err, applog.OpRead)
		return
	}
	writeJSON(w, r, http.StatusOK, week)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	trend, err := s.journal.Trend(ctx)
	if err != nil {
		s.respondStorageError(w, r, "Failed to compute trend", err, applog.OpRead)
		return
	}
	writeJSON(w, r, http.StatusOK, trend)
}

type distributionResponse struct {
	Total  int               `json:"total"`
	Counts map[core.Mood]int `json:"counts"`
	Slices []core.MoodCount  `json:"slices"`
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	d, err := s.journal.Distribution(ctx)
	if err != nil {
		s.respondStorageError(w, r, "Failed to compute distribution", err, applog.OpRead)
		return
	}
	writeJSON(w, r, http.StatusOK, distributionResponse{Total: d.Total, Counts: d.Counts, Slices: d.Slices()})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	ov, err := s.journal.Overview(ctx, parseRecent(r))
	if err != nil {
		s.respondStorageError(w, r, "Failed to build overview", err, applog.OpRead)
		return
	}
	writeJSON(w, r, http.StatusOK, ov)
}

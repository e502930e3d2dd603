package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"equanima/internal/core"
)

const maxBodyBytes = 64 << 10

// errMalformedBody is returned when the body cannot be decoded at all.
var errMalformedBody = errors.New("malformed request body")

// fieldErrors maps a JSON field name to a human readable problem.
type fieldErrors map[string]string

func (f fieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// entryRequest is the body of POST /api/entries.
type entryRequest struct {
	Date    string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Mood    string   `json:"mood" validate:"required,mood"`
	Energy  *int     `json:"energy" validate:"omitempty,min=1,max=10"`
	Anxiety *int     `json:"anxiety" validate:"omitempty,min=1,max=10"`
	Notes   string   `json:"notes" validate:"max=2000"`
	Tags    []string `json:"tags" validate:"max=20,dive,max=40"`
}

// patchRequest is the body of PATCH /api/entries/{id}. Absent fields are nil.
type patchRequest struct {
	Date    *string   `json:"date"`
	Mood    *string   `json:"mood"`
	Energy  *int      `json:"energy"`
	Anxiety *int      `json:"anxiety"`
	Notes   *string   `json:"notes"`
	Tags    *[]string `json:"tags"`
}

const (
	tagRules   = "max=20,dive,max=40"
	notesRules = "max=2000"
	levelRules = "min=1,max=10"
)

// newValidator builds the validator used at the authoring boundary. Field
// errors are reported under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		_, err := core.ParseMood(fl.Field().String())
		return err == nil
	})
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "mood":
		return "must be one of very-sad, sad, neutral, happy, very-happy"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "min", "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be between 1 and 10"
	}
	return "is invalid"
}

// collect turns a validator error into fieldErrors. name overrides the
// field name for errors produced by Var.
func collect(err error, name string, into fieldErrors) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		field := name
		if field == "" {
			field = fe.Field()
			// dive errors come back as tags[2]
			if i := strings.IndexByte(field, '['); i > 0 {
				field = field[:i]
			}
		}
		if _, seen := into[field]; !seen {
			into[field] = describe(fe)
		}
	}
	return nil
}

func isForm(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// entryRequestFromForm reads the dashboard form. Tags may be repeated
// checkbox values, a comma separated text field, or both.
func entryRequestFromForm(w http.ResponseWriter, r *http.Request) (entryRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return entryRequest{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	req := entryRequest{
		Date:  sanitizeInput(r.PostFormValue("date")),
		Mood:  sanitizeInput(r.PostFormValue("mood")),
		Notes: sanitizeInput(r.PostFormValue("notes")),
	}
	fields := fieldErrors{}
	req.Energy = formLevel(r, "energy", fields)
	req.Anxiety = formLevel(r, "anxiety", fields)
	if len(fields) > 0 {
		return entryRequest{}, fields
	}

	var tags []string
	for _, t := range r.PostForm["tags"] {
		tags = append(tags, core.SplitTags(t)...)
	}
	tags = append(tags, core.SplitTags(r.PostFormValue("custom_tags"))...)
	req.Tags = tags
	return req, nil
}

func formLevel(r *http.Request, name string, fields fieldErrors) *int {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fields[name] = "must be a whole number"
		return nil
	}
	return &n
}

// parseEntryRequest decodes and validates a new entry. today fills a
// missing date.
func (s *Server) parseEntryRequest(w http.ResponseWriter, r *http.Request, today core.Date) (core.NewEntry, error) {
	var req entryRequest
	if isForm(r) {
		var err error
		if req, err = entryRequestFromForm(w, r); err != nil {
			return core.NewEntry{}, err
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		return core.NewEntry{}, err
	}
	req.Notes = sanitizeInput(req.Notes)

	fields := fieldErrors{}
	if err := collect(s.validate.Struct(req), "", fields); err != nil {
		return core.NewEntry{}, err
	}
	if len(fields) > 0 {
		return core.NewEntry{}, fields
	}

	e := core.NewEntry{
		Date:    today,
		Energy:  core.DefaultEnergy,
		Anxiety: core.DefaultAnxiety,
		Notes:   req.Notes,
		Tags:    core.NormalizeTags(req.Tags),
	}
	e.Mood, _ = core.ParseMood(req.Mood)
	if req.Date != "" {
		e.Date, _ = core.ParseDate(req.Date)
	}
	if req.Energy != nil {
		e.Energy = *req.Energy
	}
	if req.Anxiety != nil {
		e.Anxiety = *req.Anxiety
	}

	// omitempty lets an explicit 0 through the struct rules.
	if err := e.Validate(); err != nil {
		return core.NewEntry{}, domainFieldError(err)
	}
	return e, nil
}

// parsePatchRequest decodes a partial update and validates each present field.
func (s *Server) parsePatchRequest(w http.ResponseWriter, r *http.Request) (core.EntryPatch, error) {
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return core.EntryPatch{}, err
	}

	var patch core.EntryPatch
	fields := fieldErrors{}

	if req.Date != nil {
		d, err := core.ParseDate(strings.TrimSpace(*req.Date))
		if err != nil {
			fields["date"] = "must be a date in YYYY-MM-DD form"
		} else {
			patch.Date = &d
		}
	}
	if req.Mood != nil {
		m, err := core.ParseMood(*req.Mood)
		if err != nil {
			fields["mood"] = "must be one of very-sad, sad, neutral, happy, very-happy"
		} else {
			patch.Mood = &m
		}
	}
	for name, level := range map[string]*int{"energy": req.Energy, "anxiety": req.Anxiety} {
		if level == nil {
			continue
		}
		if err := collect(s.validate.Var(*level, levelRules), name, fields); err != nil {
			return core.EntryPatch{}, err
		}
	}
	patch.Energy = req.Energy
	patch.Anxiety = req.Anxiety
	if req.Notes != nil {
		notes := sanitizeInput(*req.Notes)
		if err := collect(s.validate.Var(notes, notesRules), "notes", fields); err != nil {
			return core.EntryPatch{}, err
		}
		patch.Notes = &notes
	}
	if req.Tags != nil {
		if err := collect(s.validate.Var(*req.Tags, tagRules), "tags", fields); err != nil {
			return core.EntryPatch{}, err
		}
		tags := core.NormalizeTags(*req.Tags)
		patch.Tags = &tags
	}

	if len(fields) > 0 {
		return core.EntryPatch{}, fields
	}
	if err := patch.Validate(); err != nil {
		return core.EntryPatch{}, domainFieldError(err)
	}
	return patch, nil
}

// domainFieldError maps a core validation error onto the field it concerns.
func domainFieldError(err error) error {
	for _, m := range []struct {
		target error
		field  string
	}{
		{core.ErrInvalidDate, "date"},
		{core.ErrInvalidMood, "mood"},
		{core.ErrInvalidEnergy, "energy"},
		{core.ErrInvalidAnxiety, "anxiety"},
		{core.ErrNotesTooLong, "notes"},
		{core.ErrEmptyTag, "tags"},
	} {
		if errors.Is(err, m.target) {
			msg := strings.TrimPrefix(m.target.Error(), core.ErrInvalidEntry.Error()+": ")
			return fieldErrors{m.field: msg}
		}
	}
	return err
}

// today returns the server's current calendar day.
func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

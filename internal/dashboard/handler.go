// Package dashboard serves the operator board over HTTP: the oven summary,
// the in-oven detail, a form to log cylinders, unload buttons and the export
// download.
package dashboard

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/ovenledger/internal/export"
	"github.com/roach88/ovenledger/internal/ledger"
	"github.com/roach88/ovenledger/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var boardTemplate = template.Must(template.New("board.html").Funcs(template.FuncMap{
	"clock": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05") },
	"mm":    func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(templateFS, "templates/board.html"))

// Handler wires dashboard endpoints to the ledger.
type Handler struct {
	ledger   *ledger.Ledger
	exporter export.Writer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs a dashboard handler with its dependencies.
func New(l *ledger.Ledger, exp export.Writer, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		ledger:   l,
		exporter: exp,
		logger:   logger,
		metrics:  m,
	}
}

// Register mounts dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleBoard)
	r.Post("/cylinders", h.HandleAdd)
	r.Post("/cylinders/{id}/unload", h.HandleUnload)
	r.Get("/export", h.HandleExport)
	r.Get("/api/summary", h.HandleSummary)
	r.Get("/api/in-oven", h.HandleInOven)
}

// boardData is what board.html renders.
type boardData struct {
	ledger.View
	Ovens  []string
	Notice string
	Errors []ledger.FieldError
	Form   formValues
}

// formValues echoes the add form back after a rejected submission.
type formValues struct {
	OrderNumber       string
	CurrentID         string
	NeededID          string
	OvenNumber        string
	EstimatedDuration string
	Operator          string
	Material          string
	Thickness         string
}

// HandleBoard handles GET / requests.
func (h *Handler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	h.renderBoard(w, http.StatusOK, boardData{
		Notice: r.URL.Query().Get("notice"),
		Form:   formValues{EstimatedDuration: "60", Thickness: "0"},
	})
}

// HandleAdd handles POST /cylinders requests.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	form := formValues{
		OrderNumber:       r.PostForm.Get("order_number"),
		CurrentID:         r.PostForm.Get("current_id"),
		NeededID:          r.PostForm.Get("needed_id"),
		OvenNumber:        r.PostForm.Get("oven_number"),
		EstimatedDuration: r.PostForm.Get("estimated_duration"),
		Operator:          r.PostForm.Get("operator"),
		Material:          r.PostForm.Get("material"),
		Thickness:         r.PostForm.Get("thickness"),
	}

	c, parseErrs := form.cylinder()
	if fieldErrs := mergeFieldErrors(ledger.Validate(c, h.ledger.Ovens()), parseErrs); len(fieldErrs) > 0 {
		h.metrics.Observe(metrics.ActionAdd, &ledger.ValidationError{Fields: fieldErrs})
		h.renderBoard(w, http.StatusUnprocessableEntity, boardData{Errors: fieldErrs, Form: form})
		return
	}

	rec, err := h.ledger.AddCylinder(r.Context(), c)
	h.metrics.Observe(metrics.ActionAdd, err)

	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderBoard(w, http.StatusUnprocessableEntity, boardData{Errors: verr.Fields, Form: form})
		return
	case err != nil && !ledger.IsStorageWrite(err):
		h.fail(w, r, err)
		return
	}

	notice := "Added " + rec.CurrentID + " to " + rec.OvenNumber + "."
	if err != nil {
		notice += " Warning: " + err.Error()
	}
	redirect(w, r, notice)
}

// HandleUnload handles POST /cylinders/{id}/unload requests.
func (h *Handler) HandleUnload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.ledger.UnloadCylinder(r.Context(), id)
	h.metrics.Observe(metrics.ActionUnload, err)

	switch {
	case ledger.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case ledger.IsAlreadyUnloaded(err):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil && !ledger.IsStorageWrite(err):
		h.fail(w, r, err)
		return
	}

	notice := "Unloaded " + rec.CurrentID + " from " + rec.OvenNumber + "."
	if err != nil {
		notice += " Warning: " + err.Error()
	}
	redirect(w, r, notice)
}

// HandleExport handles GET /export requests by serving the current artifact.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.exporter.Path())
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "no cylinders have been unloaded yet", http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	name := filepath.Base(h.exporter.Path())
	w.Header().Set("Content-Type", h.exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// HandleSummary handles GET /api/summary requests.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.InOvenSummary())
}

// HandleInOven handles GET /api/in-oven requests.
func (h *Handler) HandleInOven(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.View().InOven)
}

func (h *Handler) renderBoard(w http.ResponseWriter, status int, data boardData) {
	data.View = h.ledger.View()
	data.Ovens = h.ledger.Ovens()

	var buf strings.Builder
	if err := boardTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("render board failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// cylinder converts the form into a NewCylinder. Numeric fields that do not
// parse are reported here and set to values the ledger also rejects.
func (f formValues) cylinder() (ledger.NewCylinder, []ledger.FieldError) {
	var errs []ledger.FieldError
	c := ledger.NewCylinder{
		OrderNumber: f.OrderNumber,
		CurrentID:   f.CurrentID,
		NeededID:    f.NeededID,
		OvenNumber:  f.OvenNumber,
		Operator:    f.Operator,
		Material:    f.Material,
	}

	d, err := strconv.Atoi(strings.TrimSpace(f.EstimatedDuration))
	if err != nil {
		errs = append(errs, ledger.FieldError{Field: "EstimatedDuration", Message: "must be a whole number of minutes"})
		d = 0
	}
	c.EstimatedDuration = d

	t, err := strconv.ParseFloat(strings.TrimSpace(f.Thickness), 64)
	if err != nil {
		errs = append(errs, ledger.FieldError{Field: "Thickness", Message: "must be a number"})
		t = math.NaN()
	}
	c.Thickness = t

	return c, errs
}

// mergeFieldErrors combines the ledger's validation with form parse errors.
// A parse error replaces the ledger's message for the same field, keeping the
// ledger's field order.
func mergeFieldErrors(verr *ledger.ValidationError, parseErrs []ledger.FieldError) []ledger.FieldError {
	var fields []ledger.FieldError
	if verr != nil {
		fields = slices.Clone(verr.Fields)
	}
	for _, pe := range parseErrs {
		i := slices.IndexFunc(fields, func(f ledger.FieldError) bool { return f.Field == pe.Field })
		if i < 0 {
			fields = append(fields, pe)
			continue
		}
		fields[i] = pe
	}
	return fields
}

func redirect(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

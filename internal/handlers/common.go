package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/models"
	"github.com/lehigh-university-libraries/htrbench/internal/storage"
	"github.com/lehigh-university-libraries/htrbench/internal/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	reportStore *storage.ReportStore
	templates   *template.Template
}

func New(store *storage.ReportStore) *Handler {
	if store == nil {
		store = storage.New()
	}
	return &Handler{
		reportStore: store,
		templates: template.Must(template.New("").Funcs(template.FuncMap{
			"percent": metrics.Percent,
		}).ParseFS(templateFS, "templates/*.html")),
	}
}

// AddReport makes a run available to the viewer
func (h *Handler) AddReport(agg *metrics.AggregateResults) *models.Report {
	report := models.NewReport(agg)
	h.reportStore.Set(report)
	telemetry.ReportsLoaded.Set(float64(h.reportStore.Len()))
	return report
}

// Routes registers every viewer route on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.instrument("dashboard", h.HandleDashboard))
	mux.HandleFunc("GET /api/reports", h.instrument("reports", h.HandleReports))
	mux.HandleFunc("POST /api/reports", h.instrument("reports_upload", h.HandleReportUpload))
	mux.HandleFunc("GET /api/reports/{id}", h.instrument("report_detail", h.HandleReportDetail))
	mux.HandleFunc("POST /api/compare", h.instrument("compare", h.HandleCompare))
	mux.HandleFunc("GET /vs_text/{n}", h.instrument("vs_text", h.HandleVsText))
	mux.HandleFunc("GET /ranking_classification_errors/{n}", h.instrument("ranking", h.HandleRanking))
	mux.HandleFunc("GET /rat_ob_steps/{n}", h.instrument("rat_ob_steps", h.HandleRatOb))
	mux.HandleFunc("GET /sequences_to_signals/{n}", h.instrument("signals", h.HandleSignals))
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Unable to render template", "template", name, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Report helpers

// getReportOrError returns the report named by ?report=, or the latest one
func (h *Handler) getReportOrError(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	var report *models.Report
	var exists bool
	if id := r.URL.Query().Get("report"); id != "" {
		report, exists = h.reportStore.Get(id)
	} else {
		report, exists = h.reportStore.Latest()
	}
	if !exists {
		h.writeError(w, "Report not found", http.StatusNotFound)
		return nil, false
	}
	return report, true
}

// getPageOrError resolves the {n} path value to a scored page of the report
func (h *Handler) getPageOrError(w http.ResponseWriter, r *http.Request) (*models.Report, int, *metrics.Result, bool) {
	report, ok := h.getReportOrError(w, r)
	if !ok {
		return nil, 0, nil, false
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		h.writeError(w, "Invalid page index: "+r.PathValue("n"), http.StatusBadRequest)
		return nil, 0, nil, false
	}

	page, exists := report.Page(n)
	if !exists {
		h.writeError(w, "Page not found", http.StatusNotFound)
		return nil, 0, nil, false
	}
	if page.Result == nil {
		h.writeError(w, "Page has no result: "+page.Error, http.StatusNotFound)
		return nil, 0, nil, false
	}
	return report, n, page.Result, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		telemetry.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/models"
)

// maxUploadSize bounds uploaded report bodies
const maxUploadSize = 64 << 20

type dashboardData struct {
	Report  *models.Report
	Summary *metrics.AggregateResults
	Reports []*models.Report
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{Reports: h.reportStore.List()}

	if id := r.URL.Query().Get("report"); id != "" {
		report, ok := h.getReportOrError(w, r)
		if !ok {
			return
		}
		data.Report = report
	} else if report, ok := h.reportStore.Latest(); ok {
		data.Report = report
	}
	if data.Report != nil {
		data.Summary = data.Report.Results
	}

	h.render(w, "dashboard.html", data)
}

func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.reportStore.List())
}

func (h *Handler) HandleReportDetail(w http.ResponseWriter, r *http.Request) {
	report, exists := h.reportStore.Get(r.PathValue("id"))
	if !exists {
		h.writeError(w, "Report not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, report.Results)
}

// HandleReportUpload loads a report.json produced by eval run into the viewer
func (h *Handler) HandleReportUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var agg metrics.AggregateResults
	if err := json.NewDecoder(r.Body).Decode(&agg); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(agg.Results) == 0 {
		h.writeError(w, "Report has no pages", http.StatusBadRequest)
		return
	}

	report := h.AddReport(&agg)

	h.writeJSONStatus(w, http.StatusCreated, map[string]any{
		"id":    report.ID,
		"pages": len(report.Pages),
		"url":   "/?report=" + report.ID,
	})
}

// HandleCompare scores a single reference/prediction pair
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Reference  string `json:"reference"`
		Prediction string `json:"prediction"`
		Clean      bool   `json:"clean"`
		Language   string `json:"language"`
		TopN       int    `json:"top_n"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.TopN < 0 {
		h.writeError(w, "top_n must not be negative", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, metrics.Compute(request.Reference, request.Prediction, metrics.Options{
		Clean:    request.Clean,
		Language: request.Language,
		TopN:     request.TopN,
	}))
}

package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/signal"
	"github.com/lehigh-university-libraries/htrbench/internal/models"
)

type vsTextData struct {
	Report      *models.Report
	Index       int
	PageID      string
	Reference   string
	Prediction  string
	Diff        template.HTML
	Levenshtein int
}

func (h *Handler) HandleVsText(w http.ResponseWriter, r *http.Request) {
	report, n, result, ok := h.getPageOrError(w, r)
	if !ok {
		return
	}

	h.render(w, "vs_text.html", vsTextData{
		Report:      report,
		Index:       n,
		PageID:      report.Pages[n].ID,
		Reference:   result.Reference,
		Prediction:  result.Prediction,
		Diff:        metrics.DiffHTML(result.Reference, result.Prediction),
		Levenshtein: result.Levenshtein,
	})
}

type heatCell struct {
	Count int
	Style template.CSS
}

type rankingData struct {
	Report     *models.Report
	Index      int
	PageID     string
	TotalPairs int
	Lines      []string
	Labels     []string
	Rows       [][]heatCell
}

func (h *Handler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	report, n, result, ok := h.getPageOrError(w, r)
	if !ok {
		return
	}

	matrix := result.Matrix()

	h.render(w, "ranking.html", rankingData{
		Report:     report,
		Index:      n,
		PageID:     report.Pages[n].ID,
		TotalPairs: len(result.Confusions),
		Lines:      metrics.RankingLines(result.TopConfusions),
		Labels:     matrix.Labels,
		Rows:       heatmap(matrix.Counts),
	})
}

// heatmap shades each cell by its count relative to the largest count
func heatmap(counts [][]int) [][]heatCell {
	peak := 0
	for _, row := range counts {
		for _, c := range row {
			peak = max(peak, c)
		}
	}

	rows := make([][]heatCell, len(counts))
	for i, row := range counts {
		rows[i] = make([]heatCell, len(row))
		for j, c := range row {
			alpha := 0.0
			if peak > 0 {
				alpha = float64(c) / float64(peak)
			}
			rows[i][j] = heatCell{
				Count: c,
				Style: template.CSS(fmt.Sprintf("background-color: rgba(65, 105, 225, %.2f)", alpha)),
			}
		}
	}
	return rows
}

func (h *Handler) HandleRatOb(w http.ResponseWriter, r *http.Request) {
	_, _, result, ok := h.getPageOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, result.RatOb)
}

type signalsResponse struct {
	Page           string         `json:"page"`
	MinInterval    int            `json:"min_interval"`
	MaxInterval    int            `json:"max_interval"`
	Reference      []float64      `json:"reference"`
	Prediction     []float64      `json:"prediction"`
	Deltas         []float64      `json:"deltas"`
	ErrorPositions []int          `json:"error_positions"`
	Stats          signal.Stats   `json:"stats"`
	Bands          signal.Bands   `json:"bands"`
	Weights        []signal.Entry `json:"weights"`
}

func (h *Handler) HandleSignals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	minInterval, err := intParam(query.Get("min_interval"), signal.DefaultSampleStart)
	if err != nil || minInterval < 0 {
		h.writeError(w, "Invalid min_interval", http.StatusBadRequest)
		return
	}
	maxInterval, err := intParam(query.Get("max_interval"), signal.DefaultSampleEnd)
	if err != nil || maxInterval < minInterval {
		h.writeError(w, "Invalid max_interval", http.StatusBadRequest)
		return
	}
	showDeltas, err := boolParam(query.Get("show_deltas"), false)
	if err != nil {
		h.writeError(w, "Invalid show_deltas", http.StatusBadRequest)
		return
	}
	errorBoxes, err := boolParam(query.Get("error_boxes"), false)
	if err != nil {
		h.writeError(w, "Invalid error_boxes", http.StatusBadRequest)
		return
	}

	report, n, result, ok := h.getPageOrError(w, r)
	if !ok {
		return
	}

	analysis := signal.Analyze(result.Reference, result.Prediction)
	response := signalsResponse{
		Page:        report.Pages[n].ID,
		MinInterval: minInterval,
		MaxInterval: maxInterval,
		Reference:   signal.Sample(analysis.Reference, minInterval, maxInterval),
		Prediction:  signal.Sample(analysis.Prediction, minInterval, maxInterval),
		Stats:       analysis.Stats,
		Bands:       analysis.Bands,
		Weights:     signal.Table(),
	}
	if showDeltas {
		response.Deltas = signal.Sample(analysis.Deltas, minInterval, maxInterval)
	}
	if errorBoxes {
		response.ErrorPositions = []int{}
		for _, p := range analysis.ErrorPositions {
			if p >= minInterval && p < maxInterval {
				response.ErrorPositions = append(response.ErrorPositions, p)
			}
		}
	}

	h.writeJSON(w, response)
}

func intParam(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func boolParam(v string, fallback bool) (bool, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

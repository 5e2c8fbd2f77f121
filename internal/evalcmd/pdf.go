package evalcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
)

// PDF layout, in points
const (
	pdfMargin   = 36.0
	pdfRowH     = 16.0
	pdfFontSize = 10.0
)

var pageColumns = []struct {
	title string
	width float64
}{
	{"Page", 150},
	{"Label", 130},
	{"WER %", 60},
	{"CER %", 60},
	{"Acc. %", 60},
	{"Lev.", 40},
}

// writePDFReport renders the summary and per-page scores of a run
func writePDFReport(agg *metrics.AggregateResults, w io.Writer) error {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetFillColor(230, 230, 230)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 24, "HTR Benchmark Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", pdfFontSize)
	for _, line := range []string{
		fmt.Sprintf("Report ID: %s", agg.ReportID),
		fmt.Sprintf("Date: %s", agg.EvaluationDate.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Provider: %s   Model: %s", agg.Provider, agg.Model),
		fmt.Sprintf("Dataset: %s", agg.DatasetPath),
		fmt.Sprintf("Pages: %d   Successful: %d   Failed: %d   Not computable: %d",
			agg.TotalPages, agg.SuccessCount, agg.FailureCount, agg.NotComputable),
		fmt.Sprintf("Corpus WER: %s%%   Corpus CER: %s%%", metrics.Percent(agg.CorpusWER), metrics.Percent(agg.CorpusCER)),
	} {
		pdf.CellFormat(0, pdfRowH, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	for _, h := range []string{"Metric", "Pages", "Mean", "Median", "Min", "Max"} {
		pdf.CellFormat(80, pdfRowH, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	for _, m := range []struct {
		name  string
		stats metrics.MetricStats
		scale float64
	}{
		{"WER %", agg.WER, 100},
		{"CER %", agg.CER, 100},
		{"Accuracy %", agg.WordAccuracy, 100},
		{"Jaccard", agg.Jaccard, 1},
		{"Cosine", agg.Cosine, 1},
	} {
		pdf.CellFormat(80, pdfRowH, m.name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, pdfRowH, fmt.Sprintf("%d", m.stats.Count), "1", 0, "R", false, 0, "")
		for _, v := range []float64{m.stats.Mean, m.stats.Median, m.stats.Min, m.stats.Max} {
			pdf.CellFormat(80, pdfRowH, fmt.Sprintf("%.2f", metrics.Truncate2(v*m.scale)), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	for _, c := range pageColumns {
		pdf.CellFormat(c.width, pdfRowH, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", pdfFontSize)
	for _, page := range agg.Results {
		cells := []string{page.ID, page.Label, "-", "-", "-", "-"}
		if page.Error != "" {
			cells[2] = "error"
		} else if r := page.Result; r != nil {
			cells[2] = r.WERPercent.String()
			cells[3] = r.CERPercent.String()
			cells[4] = r.WordAccuracyPercent.String()
			cells[5] = fmt.Sprintf("%d", r.Levenshtein)
		}
		for i, c := range pageColumns {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(c.width, pdfRowH, tr(fitText(pdf, cells[i], c.width-4)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// fitText shortens s until it fits in width at the current font size
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func savePDFReport(agg *metrics.AggregateResults, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF file: %w", err)
	}
	defer file.Close()

	return writePDFReport(agg, file)
}

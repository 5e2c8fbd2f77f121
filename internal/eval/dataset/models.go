package dataset

import (
	"golang.org/x/text/unicode/norm"
)

// DefaultLabel is attached to pages without label metadata
const DefaultLabel = "No metadata specify"

// PageRecord is one page of a benchmark dataset: a ground-truth transcription
// and either a prediction to score or an image to transcribe
type PageRecord struct {
	// Page identifier, the ground-truth file stem for directory datasets
	ID string `json:"id" parquet:"id"`

	// Ground-truth transcription
	Reference string `json:"reference" parquet:"reference"`

	// Recognised text; empty when the page still has to be transcribed
	Prediction string `json:"prediction,omitempty" parquet:"prediction,optional"`

	// Page image used for transcription
	ImagePath string `json:"image_path,omitempty" parquet:"image_path,optional"`

	// Free-form label such as the hand, the script or the collection
	Label string `json:"label,omitempty" parquet:"label,optional"`
}

// HasPrediction reports whether the record already carries a prediction
func (r *PageRecord) HasPrediction() bool {
	return r.Prediction != ""
}

// CanTranscribe reports whether the record has an image to send to a provider
func (r *PageRecord) CanTranscribe() bool {
	return r.ImagePath != ""
}

// normalize puts both texts in NFC and fills in the default label
func (r *PageRecord) normalize() {
	r.Reference = norm.NFC.String(r.Reference)
	r.Prediction = norm.NFC.String(r.Prediction)
	if r.Label == "" {
		r.Label = DefaultLabel
	}
}

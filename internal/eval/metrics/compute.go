package metrics

// Options controls a metric computation
type Options struct {
	// Clean strips punctuation, digits and line breaks before WER and CER
	Clean bool
	// Language selects the stop-words used by Jaccard and cosine similarity
	Language string
	// TopN bounds the confusion pairs kept for the matrix (DefaultTopConfusions when zero)
	TopN int
}

// Result is the full metric set for one reference/prediction pair
type Result struct {
	Reference  string `json:"reference"`
	Prediction string `json:"prediction"`
	Clean      bool   `json:"clean"`
	Language   string `json:"language"`

	ReferenceWords  int `json:"reference_words"`
	PredictionWords int `json:"prediction_words"`
	ReferenceChars  int `json:"reference_chars"`
	PredictionChars int `json:"prediction_chars"`
	WordDistance    int `json:"word_distance"`
	CharDistance    int `json:"char_distance"`

	// Fractions
	WER          Value `json:"wer"`
	CER          Value `json:"cer"`
	WordAccuracy Value `json:"word_accuracy"`

	// Truncated percentages
	WERPercent          Value `json:"wer_percent"`
	CERPercent          Value `json:"cer_percent"`
	WordAccuracyPercent Value `json:"word_accuracy_percent"`

	Jaccard     float64 `json:"jaccard"`
	Cosine      float64 `json:"cosine"`
	Levenshtein int     `json:"levenshtein"`
	Hamming     Value   `json:"hamming"`

	Alignment     []Op            `json:"alignment"`
	Confusions    []ConfusionPair `json:"confusions"`
	TopConfusions []ConfusionPair `json:"top_confusions"`
	RatOb         RatOb           `json:"ratcliff_obershelp"`
}

// Compute runs every metric over a reference and a prediction
func Compute(reference, prediction string, opts Options) *Result {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.TopN == 0 {
		opts.TopN = DefaultTopConfusions
	}

	refWords := TokenizeClean(reference, WordMode, opts.Clean)
	predWords := TokenizeClean(prediction, WordMode, opts.Clean)
	refChars := TokenizeClean(reference, CharMode, opts.Clean)
	predChars := TokenizeClean(prediction, CharMode, opts.Clean)

	wer := WER(refWords, predWords)
	cer := CER(refChars, predChars)
	accuracy := WordAccuracy(refWords, predWords)

	refNorm := Normalize(reference, opts.Language)
	predNorm := Normalize(prediction, opts.Language)

	ops := Align(reference, prediction)
	confusions := ConfusionPairs(ops)

	return &Result{
		Reference:  reference,
		Prediction: prediction,
		Clean:      opts.Clean,
		Language:   opts.Language,

		ReferenceWords:  len(refWords),
		PredictionWords: len(predWords),
		ReferenceChars:  len(refChars),
		PredictionChars: len(predChars),
		WordDistance:    EditDistance(refWords, predWords),
		CharDistance:    EditDistance(refChars, predChars),

		WER:          wer,
		CER:          cer,
		WordAccuracy: accuracy,

		WERPercent:          Percent(wer),
		CERPercent:          Percent(cer),
		WordAccuracyPercent: Percent(accuracy),

		Jaccard:     Truncate2(Jaccard(refNorm, predNorm)),
		Cosine:      Truncate2(Cosine(refNorm, predNorm)),
		Levenshtein: Levenshtein(reference, prediction),
		Hamming:     Hamming(reference, prediction),

		Alignment:     ops,
		Confusions:    confusions,
		TopConfusions: TopConfusions(confusions, opts.TopN),
		RatOb:         RatcliffObershelp(reference, prediction),
	}
}

// Matrix returns the confusion matrix of the top pairs
func (r *Result) Matrix() ConfusionMatrix {
	return NewConfusionMatrix(r.TopConfusions)
}

// Diff returns the coloured diff segments of the alignment
func (r *Result) Diff() []Segment {
	return DiffSegments(r.Alignment)
}

package tesseract

// DefaultLanguage is the trained data used when no model is given
const DefaultLanguage = "eng"

// Language returns the trained data name for a model, defaulting to English
func Language(model string) string {
	if model == "" {
		return DefaultLanguage
	}
	return model
}

package dataset

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// AltoToText extracts the text of an ALTO document. Words of a TextLine are
// joined with spaces and lines with newlines. Element names are matched
// without their namespace so ALTO v1 to v4 are read the same way.
func AltoToText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var lines []string
	var words []string
	inLine := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse ALTO: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "TextLine":
				inLine = true
				words = words[:0]
			case "String":
				if !inLine {
					continue
				}
				for _, attr := range el.Attr {
					if attr.Name.Local == "CONTENT" && attr.Value != "" {
						words = append(words, attr.Value)
					}
				}
			}
		case xml.EndElement:
			if el.Name.Local == "TextLine" && inLine {
				lines = append(lines, strings.Join(words, " "))
				inLine = false
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}

// readAltoFile reads the text of an ALTO file
func readAltoFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open ALTO file: %w", err)
	}
	defer file.Close()

	return AltoToText(file)
}

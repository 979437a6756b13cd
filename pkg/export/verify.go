package export

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/pkg/errors"
)

// Verify extracts the text of an exported PDF and returns the profile fields
// whose non-empty values cannot be found in it. Whitespace is ignored on both sides.
func Verify(path string, p profile.Profile) (missing []profile.Field, err error) {
	var text string
	text, err = ExtractText(path)
	if err != nil {
		return missing, err
	}

	missing = MissingFields(text, p)
	return missing, err
}

// ExtractText returns the plain text of a PDF file.
func ExtractText(path string) (text string, err error) {
	f, reader, openErr := pdf.Open(path)
	if openErr != nil {
		err = errors.Wrapf(openErr, "failed to open PDF: %s", path)
		return text, err
	}
	defer f.Close()

	plain, textErr := reader.GetPlainText()
	if textErr != nil {
		err = errors.Wrapf(textErr, "failed to extract text from PDF: %s", path)
		return text, err
	}

	var buf bytes.Buffer
	_, err = buf.ReadFrom(plain)
	if err != nil {
		err = errors.Wrapf(err, "failed to read PDF text: %s", path)
		return text, err
	}

	text = buf.String()
	return text, err
}

// MissingFields reports which non-empty fields of p do not appear in text.
func MissingFields(text string, p profile.Profile) (missing []profile.Field) {
	haystack := squash(text)
	for _, field := range profile.Fields() {
		value := squash(p.Get(field))
		if value == "" {
			continue
		}
		if !strings.Contains(haystack, value) {
			missing = append(missing, field)
		}
	}
	return missing
}

func squash(s string) (out string) {
	out = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return out
}

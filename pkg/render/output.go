package render

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteFile writes a rendered document to outputPath, creating parent
// directories as needed.
func WriteFile(doc Document, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, doc.HTML, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write document: %s", outputPath)
		return err
	}

	return err
}

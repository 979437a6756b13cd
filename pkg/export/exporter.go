package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

const (
	// DefaultFilename is used when the profile has no name.
	DefaultFilename = "CV.pdf"
	// DefaultMarginInches is the page margin when none is configured.
	DefaultMarginInches = 0.5
	// ScaleFactor is the fixed rasterization scale.
	ScaleFactor = 2
)

// ErrNoRenderableNode is returned when a document has no non-empty preview element.
var ErrNoRenderableNode = errors.New("no renderable node in document")

// Options controls a single rasterization.
type Options struct {
	MarginInches float64
	Scale        float64
}

// Rasterizer turns an HTML document into PDF bytes.
type Rasterizer interface {
	PDF(ctx context.Context, doc []byte, opts Options) ([]byte, error)
}

// Exporter converts rendered documents to PDF files.
type Exporter struct {
	Rasterizer   Rasterizer
	MarginInches float64
	OutputDir    string
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(r Rasterizer, marginInches float64, outputDir string) (exporter *Exporter) {
	exporter = &Exporter{
		Rasterizer:   r,
		MarginInches: marginInches,
		OutputDir:    outputDir,
	}
	return exporter
}

// Filename returns the download name for a profile name: "<name>.pdf", or
// DefaultFilename when the name is blank. Path separators are replaced.
func Filename(name string) (filename string) {
	name = strings.TrimSpace(name)
	if name == "" {
		filename = DefaultFilename
		return filename
	}

	replacer := strings.NewReplacer("/", "-", "\\", "-", "\x00", "")
	filename = replacer.Replace(name) + ".pdf"
	return filename
}

// Bytes rasterizes doc and returns the PDF.
func (e *Exporter) Bytes(ctx context.Context, doc render.Document) (pdf []byte, err error) {
	err = CheckRenderable(doc.HTML)
	if err != nil {
		return pdf, err
	}

	if e.Rasterizer == nil {
		err = errors.New("no rasterizer configured")
		return pdf, err
	}

	opts := Options{
		MarginInches: e.MarginInches,
		Scale:        ScaleFactor,
	}

	pdf, err = e.Rasterizer.PDF(ctx, doc.HTML, opts)
	if err != nil {
		err = errors.Wrap(err, "failed to rasterize document")
		return pdf, err
	}

	if len(pdf) == 0 {
		err = errors.New("rasterizer returned an empty PDF")
		return pdf, err
	}

	return pdf, err
}

// ExportToDocument rasterizes doc and writes it to the output directory under
// a name derived from the profile name. It returns the written path.
func (e *Exporter) ExportToDocument(ctx context.Context, doc render.Document, name string) (path string, err error) {
	var pdf []byte
	pdf, err = e.Bytes(ctx, doc)
	if err != nil {
		return path, err
	}

	outDir := e.OutputDir
	if outDir == "" {
		outDir = "."
	}

	// Ensure output directory exists
	err = os.MkdirAll(outDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return path, err
	}

	path = filepath.Join(outDir, Filename(name))
	err = os.WriteFile(path, pdf, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write PDF file: %s", path)
		return path, err
	}

	return path, err
}

// CheckRenderable verifies doc parses and holds a non-empty preview element.
func CheckRenderable(doc []byte) (err error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		err = errors.Wrap(ErrNoRenderableNode, "document is empty")
		return err
	}

	var root *html.Node
	root, err = html.Parse(bytes.NewReader(doc))
	if err != nil {
		err = errors.Wrap(err, "failed to parse document")
		return err
	}

	node := findByID(root, render.PreviewID)
	if node == nil {
		err = errors.Wrapf(ErrNoRenderableNode, "missing #%s", render.PreviewID)
		return err
	}

	if node.FirstChild == nil {
		err = errors.Wrapf(ErrNoRenderableNode, "#%s is empty", render.PreviewID)
		return err
	}

	return err
}

func findByID(n *html.Node, id string) (found *html.Node) {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				found = n
				return found
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = findByID(c, id)
		if found != nil {
			return found
		}
	}

	return found
}

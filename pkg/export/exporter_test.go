package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
)

type fakeRasterizer struct {
	calls int
	opts  Options
	doc   []byte
	err   error
}

func (f *fakeRasterizer) PDF(ctx context.Context, doc []byte, opts Options) ([]byte, error) {
	f.calls++
	f.opts = opts
	f.doc = doc
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func renderDoc(t *testing.T, p profile.Profile) (doc render.Document) {
	t.Helper()
	doc, err := render.DefaultRegistry().Render(p, "classic", render.English)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return doc
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Sara", want: "Sara.pdf"},
		{name: "", want: "CV.pdf"},
		{name: "   ", want: "CV.pdf"},
		{name: "ليلى", want: "ليلى.pdf"},
		{name: "a/b\\c", want: "a-b-c.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Filename(tt.name)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExportToDocument(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "Sara", filename: "Sara.pdf"},
		{name: "", filename: "CV.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			tmpDir := t.TempDir()
			outDir := filepath.Join(tmpDir, "out")
			raster := &fakeRasterizer{}
			exporter := NewExporter(raster, 0.75, outDir)

			path, err := exporter.ExportToDocument(context.Background(), renderDoc(t, profile.Profile{Name: tt.name}), tt.name)
			if err != nil {
				t.Fatalf("ExportToDocument failed: %v", err)
			}

			if filepath.Base(path) != tt.filename {
				t.Errorf("Expected file %s, got %s", tt.filename, filepath.Base(path))
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read exported file: %v", err)
			}

			if string(data) != "%PDF-1.4 fake" {
				t.Errorf("Unexpected file content %q", string(data))
			}

			if raster.opts.Scale != ScaleFactor {
				t.Errorf("Expected scale %d, got %v", ScaleFactor, raster.opts.Scale)
			}

			if raster.opts.MarginInches != 0.75 {
				t.Errorf("Expected margin 0.75, got %v", raster.opts.MarginInches)
			}
		})
	}
}

func TestExportRejectsMissingNode(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "empty", html: ""},
		{name: "no preview", html: "<html><body><p>hi</p></body></html>"},
		{name: "empty preview", html: `<html><body><main id="cv-preview"></main></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster := &fakeRasterizer{}
			exporter := NewExporter(raster, DefaultMarginInches, t.TempDir())

			_, err := exporter.ExportToDocument(context.Background(), render.Document{HTML: []byte(tt.html)}, "Sara")
			if !errors.Is(err, ErrNoRenderableNode) {
				t.Errorf("Expected ErrNoRenderableNode, got %v", err)
			}

			if raster.calls != 0 {
				t.Error("Rasterizer should not be called for an unrenderable document")
			}
		})
	}
}

func TestExportRasterizerFailure(t *testing.T) {
	tmpDir := t.TempDir()
	raster := &fakeRasterizer{err: errors.New("chromium crashed")}
	exporter := NewExporter(raster, DefaultMarginInches, tmpDir)

	_, err := exporter.ExportToDocument(context.Background(), renderDoc(t, profile.Profile{Name: "Sara"}), "Sara")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	_, statErr := os.Stat(filepath.Join(tmpDir, "Sara.pdf"))
	if !os.IsNotExist(statErr) {
		t.Error("No file should be written when rasterization fails")
	}
}

func TestBytesPassesDocument(t *testing.T) {
	raster := &fakeRasterizer{}
	exporter := NewExporter(raster, DefaultMarginInches, "")
	doc := renderDoc(t, profile.Profile{Name: "Sara"})

	pdf, err := exporter.Bytes(context.Background(), doc)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	if len(pdf) == 0 {
		t.Error("Expected PDF bytes")
	}

	if string(raster.doc) != doc.String() {
		t.Error("Rasterizer should receive the rendered document unchanged")
	}
}

func TestNoRasterizer(t *testing.T) {
	exporter := NewExporter(nil, DefaultMarginInches, "")

	_, err := exporter.Bytes(context.Background(), renderDoc(t, profile.Profile{}))
	if err == nil {
		t.Error("Expected error without rasterizer, got nil")
	}
}

func TestMissingFields(t *testing.T) {
	p := profile.Profile{
		Name:    "Sara Ali",
		Email:   "sara@example.com",
		Skills:  "Go,\nSQL",
		Summary: "",
	}

	text := "SaraAli\nsara@example.com  Go, SQL"
	missing := MissingFields(text, p)
	if len(missing) != 0 {
		t.Errorf("Expected no missing fields, got %v", missing)
	}

	missing = MissingFields("Sara Ali", p)
	if len(missing) != 2 || missing[0] != profile.FieldEmail || missing[1] != profile.FieldSkills {
		t.Errorf("Expected email and skills missing, got %v", missing)
	}
}

func TestVerifyRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	err := os.WriteFile(path, []byte("not a pdf"), 0600)
	if err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err = Verify(path, profile.Profile{Name: "Sara"})
	if err == nil {
		t.Error("Expected error verifying a non-PDF file, got nil")
	}
}

func TestPlaywrightRasterizerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlaywrightRasterizer().PDF(ctx, []byte("<html></html>"), Options{Scale: ScaleFactor})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

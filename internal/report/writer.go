package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer persists assembled reports to the reports directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes the document to <dir>/report_<type>_<end-date>.md,
// creating the directory as needed. Rerunning for the same period
// overwrites the previous file, so runs stay idempotent.
func (w *Writer) Save(doc *Document) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}

	// End is exclusive; step back a second so a range ending at
	// midnight is filed under its last covered day.
	endDate := doc.Period.End.Add(-time.Second).Format("2006-01-02")
	name := fmt.Sprintf("report_%s_%s.md", doc.Period.Type, endDate)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(doc.Markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

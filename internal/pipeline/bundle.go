package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// ManifestName is the archive entry listing empty and failed locations.
const ManifestName = "00_ERROR_LOG.txt"

const manifestTimeLayout = "2006-01-02 15:04:05"

// Artifact is one named file destined for the bundle.
type Artifact struct {
	Name string
	Data []byte
}

// Bundle accumulates artifacts for a single zip archive. It is owned by one
// goroutine and is not safe for concurrent use.
type Bundle struct {
	createdAt time.Time
	entries   map[string][]byte
	project   string
	order     []string
}

// NewBundle starts an empty bundle for project, stamped with ts.
func NewBundle(project string, ts time.Time) *Bundle {
	return &Bundle{
		project:   project,
		createdAt: ts,
		entries:   make(map[string][]byte),
	}
}

// Add stores data under name. A repeated name replaces the earlier data.
func (b *Bundle) Add(name string, data []byte) {
	if _, ok := b.entries[name]; !ok {
		b.order = append(b.order, name)
	}
	b.entries[name] = data
}

// Len returns the number of distinct artifact entries.
func (b *Bundle) Len() int { return len(b.order) }

// Finish writes the archive. A manifest entry is added only when errorLog is
// non-empty.
func (b *Bundle) Finish(errorLog []models.ErrorLogEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if len(errorLog) > 0 {
		if err := b.write(zw, ManifestName, []byte(Manifest(b.project, b.createdAt, errorLog))); err != nil {
			return nil, err
		}
	}
	for _, name := range b.order {
		if err := b.write(zw, name, b.entries[name]); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Bundle) write(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: b.createdAt,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Manifest renders the error log text in completion order.
func Manifest(project string, ts time.Time, errorLog []models.ErrorLogEntry) string {
	var sb strings.Builder
	sb.WriteString("DOWNLOAD ERROR REPORT\n")
	fmt.Fprintf(&sb, "Project: %s\n", project)
	fmt.Fprintf(&sb, "Timestamp: %s\n", ts.Format(manifestTimeLayout))
	fmt.Fprintf(&sb, "Locations: %d\n\n", len(errorLog))
	for _, e := range errorLog {
		sb.WriteString(e.Line())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Assemble builds an archive in one call.
func Assemble(artifacts []Artifact, errorLog []models.ErrorLogEntry, project string, ts time.Time) ([]byte, error) {
	b := NewBundle(project, ts)
	for _, a := range artifacts {
		b.Add(a.Name, a.Data)
	}
	return b.Finish(errorLog)
}

package pipeline

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(b)
	}
	return files
}

var bundleTime = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

func TestAssemble_NoFailuresNoManifest(t *testing.T) {
	data, err := Assemble([]Artifact{{Name: "A_1.png", Data: []byte("img")}}, nil, "Pendidikan", bundleTime)
	require.NoError(t, err)

	files := readArchive(t, data)
	assert.Len(t, files, 1)
	assert.NotContains(t, files, ManifestName)
	assert.Equal(t, "img", files["A_1.png"])
}

func TestAssemble_ManifestListsEveryFailure(t *testing.T) {
	errorLog := []models.ErrorLogEntry{
		{LocationID: "C", DisplayName: "Cilacap", Kind: models.OutcomeConnectionError, Reason: "Connection Failed: timeout"},
		{LocationID: "B", DisplayName: "Banyumas", Kind: models.OutcomeEmpty, Reason: ReasonNoData},
	}
	data, err := Assemble([]Artifact{{Name: "A_1.png", Data: []byte("img")}}, errorLog, "Pendidikan", bundleTime)
	require.NoError(t, err)

	files := readArchive(t, data)
	require.Len(t, files, 2)
	manifest := files[ManifestName]
	assert.Contains(t, manifest, "Project: Pendidikan")
	assert.Contains(t, manifest, "Timestamp: 2026-02-01 09:30:00")

	first := bytes.Index([]byte(manifest), []byte("[ERROR] Cilacap (C): Connection Failed: timeout"))
	second := bytes.Index([]byte(manifest), []byte("[EMPTY] Banyumas (B): No Data Available"))
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first, "entries keep completion order")
}

func TestBundle_LastWriterWins(t *testing.T) {
	b := NewBundle("P", bundleTime)
	b.Add("Site_1.png", []byte("first"))
	b.Add("Other_2.png", []byte("other"))
	b.Add("Site_1.png", []byte("second"))
	assert.Equal(t, 2, b.Len())

	data, err := b.Finish(nil)
	require.NoError(t, err)
	files := readArchive(t, data)
	assert.Equal(t, "second", files["Site_1.png"])
}

func TestAssemble_EmptyArchive(t *testing.T) {
	data, err := Assemble(nil, nil, "P", bundleTime)
	require.NoError(t, err)
	assert.Empty(t, readArchive(t, data))
}

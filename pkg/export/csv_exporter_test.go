package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersPreambleAndRows(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Preamble: [][]string{
			{"Rekap Kehadiran Siswa"},
			{"Periode", "2024-03-11 s.d. 2024-03-13"},
		},
		Headers: []string{"No", "Nama", "Hadir"},
		Rows: []map[string]string{
			{"No": "1", "Nama": "Budi", "Hadir": "2"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Rekap Kehadiran Siswa", lines[0])
	assert.Equal(t, "Periode,2024-03-11 s.d. 2024-03-13", lines[1])
	assert.Equal(t, "No,Nama,Hadir", lines[2])
	assert.Equal(t, "1,Budi,2", lines[3])
}

func TestCSVExporterMissingCellRendersEmpty(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"No", "Nama"},
		Rows:    []map[string]string{{"No": "1"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), "1,")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

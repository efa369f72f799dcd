// internal/commands/csv_test.go
package foliolab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCSVCommandProfilesFile(t *testing.T) {
	path := writeTempCSV(t, "name,score\nalpha,1\nbeta,2\ngamma,3\n")

	out, err := execute(t, "csv", path)
	if err != nil {
		t.Fatalf("csv command: %v", err)
	}
	if !strings.Contains(out, "3 rows, 2 columns") {
		t.Errorf("output missing table shape, got:\n%s", out)
	}
	if !strings.Contains(out, "score") || !strings.Contains(out, "numeric") {
		t.Errorf("output should classify the score column as numeric, got:\n%s", out)
	}
	if !strings.Contains(out, "name") || !strings.Contains(out, "text") {
		t.Errorf("output should classify the name column as text, got:\n%s", out)
	}
}

func TestCSVCommandFlagsAnomalies(t *testing.T) {
	var b strings.Builder
	b.WriteString("value\n")
	for i := 0; i < 10; i++ {
		b.WriteString("10\n")
	}
	b.WriteString("100\n")
	path := writeTempCSV(t, b.String())

	out, err := execute(t, "csv", path)
	if err != nil {
		t.Fatalf("csv command: %v", err)
	}
	if !strings.Contains(out, "anomaly row 10 value=100") {
		t.Errorf("expected the outlier row to be flagged, got:\n%s", out)
	}
}

func TestCSVCommandSampleDataset(t *testing.T) {
	out, err := execute(t, "csv", filepath.Join("testdata", "incidents.csv"))
	if err != nil {
		t.Fatalf("csv command: %v", err)
	}
	if !strings.Contains(out, "6 rows, 4 columns") {
		t.Errorf("output missing table shape, got:\n%s", out)
	}
	if !strings.Contains(out, "incidents") || !strings.Contains(out, "resolution_hours") {
		t.Errorf("output missing expected columns, got:\n%s", out)
	}
}

func TestCSVCommandMissingFile(t *testing.T) {
	_, err := execute(t, "csv", filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/sentinel/internal/metrics"
)

var testSamples = []metrics.Sample{
	{CPU: 20, Memory: 30, Errors: 0, Network: 10},
	{CPU: 60, Memory: 40, Errors: 0, Network: 12},
	{CPU: 85, Memory: 75, Errors: 2, Network: 200},
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("stressed", 42, time.Second, testSamples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "stressed_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Seed != 42 || meta.Ticks != 3 || meta.TickInterval != time.Second {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Summary["peak_cpu"] != 85 {
		t.Errorf("peak_cpu = %v", meta.Summary["peak_cpu"])
	}
	if meta.Summary["critical_ticks"] != 1 || meta.Summary["stress_ticks"] != 1 {
		t.Errorf("status counts: %v", meta.Summary)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != len(testSamples) {
		t.Fatalf("expected %d samples, got %d", len(testSamples), len(samples))
	}
	for i := range samples {
		if samples[i] != testSamples[i] {
			t.Errorf("sample %d: got %+v, want %+v", i, samples[i], testSamples[i])
		}
	}
}

func TestStoreListSkipsBrokenRuns(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	if _, err := st.Save("calm", 1, time.Second, testSamples[:1]); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Preset != "calm" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("burst", 9, time.Second, testSamples)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatal(err)
	}

	var out struct {
		ID      string           `json:"id"`
		Samples []metrics.Sample `json:"samples"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != runID || len(out.Samples) != 3 {
		t.Errorf("export = %+v", out)
	}
}

func TestWriteCSVStatusColumn(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testSamples); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(lines))
	}
	for i, want := range []string{"CALM", "STRESS", "CRITICAL"} {
		if !strings.HasSuffix(lines[i+1], want) {
			t.Errorf("row %d = %q, want status %s", i+1, lines[i+1], want)
		}
	}
}

func TestWriteFileReportsErrors(t *testing.T) {
	dir := t.TempDir()
	errFill := errors.New("disk full")

	err := writeFile(filepath.Join(dir, "a.json"), func(io.Writer) error { return errFill })
	if !errors.Is(err, errFill) {
		t.Errorf("expected fill error, got %v", err)
	}

	if err := writeFile(filepath.Join(dir, "missing", "b.json"), func(io.Writer) error { return nil }); err == nil {
		t.Error("expected error creating a file in a missing directory")
	}

	path := filepath.Join(dir, "c.json")
	if err := writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "{}")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "{}" {
		t.Errorf("file contents = %q", data)
	}
}

func TestSaveFailsWhenBaseIsAFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "runs")
	if err := os.WriteFile(base, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(base).Save("calm", 1, time.Second, testSamples); err == nil {
		t.Error("expected error saving under a regular file")
	}
}

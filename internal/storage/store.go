package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/sentinel/internal/mapper"
	"github.com/san-kum/sentinel/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// Store keeps sampled runs on disk, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Preset       string             `json:"preset"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	TickInterval time.Duration      `json:"tick_interval"`
	Ticks        int                `json:"ticks"`
	Summary      map[string]float64 `json:"summary"`
}

// Summarize reduces a run to the figures shown by run listings.
func Summarize(samples []metrics.Sample) map[string]float64 {
	sum := map[string]float64{}
	if len(samples) == 0 {
		return sum
	}
	var cpu, peakCPU, peakMem, peakNet float64
	var maxErr int
	counts := map[mapper.Status]int{}
	for _, smp := range samples {
		cpu += smp.CPU
		peakCPU = max(peakCPU, smp.CPU)
		peakMem = max(peakMem, smp.Memory)
		peakNet = max(peakNet, smp.Network)
		maxErr = max(maxErr, smp.Errors)
		st, _ := mapper.Classify(smp)
		counts[st]++
	}
	sum["mean_cpu"] = cpu / float64(len(samples))
	sum["peak_cpu"] = peakCPU
	sum["peak_memory"] = peakMem
	sum["peak_network"] = peakNet
	sum["max_errors"] = float64(maxErr)
	sum["stress_ticks"] = float64(counts[mapper.Stress])
	sum["critical_ticks"] = float64(counts[mapper.Critical])
	return sum
}

// Save writes a run and returns its id.
func (s *Store) Save(preset string, seed int64, tick time.Duration, samples []metrics.Sample) (string, error) {
	runID := fmt.Sprintf("%s_%s", preset, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Preset:       preset,
		Timestamp:    time.Now(),
		Seed:         seed,
		TickInterval: tick,
		Ticks:        len(samples),
		Summary:      Summarize(samples),
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, samplesFile), func(w io.Writer) error {
		return WriteCSV(w, samples)
	}); err != nil {
		return "", err
	}
	return runID, nil
}

// writeFile creates path and runs fill on it, returning the first write or
// close error.
func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV writes one row per sample along with its mapped status.
func WriteCSV(w io.Writer, samples []metrics.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tick", "cpu", "memory", "errors", "network", "status"}); err != nil {
		return err
	}
	for i, smp := range samples {
		st, _ := mapper.Classify(smp)
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(smp.CPU, 'f', 4, 64),
			strconv.FormatFloat(smp.Memory, 'f', 4, 64),
			strconv.Itoa(smp.Errors),
			strconv.FormatFloat(smp.Network, 'f', 4, 64),
			st.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		cpu, err1 := strconv.ParseFloat(rec[1], 64)
		mem, err2 := strconv.ParseFloat(rec[2], 64)
		errs, err3 := strconv.Atoi(rec[3])
		net, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		samples = append(samples, metrics.Sample{CPU: cpu, Memory: mem, Errors: errs, Network: net})
	}
	return samples, nil
}

// ExportJSON writes a run's metadata together with its samples.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	data := struct {
		*RunMetadata
		Samples []metrics.Sample `json:"samples"`
	}{meta, samples}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

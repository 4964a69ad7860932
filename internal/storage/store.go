package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrBadSamples = errors.New("malformed samples file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Engine     string
	Integrator string
	Seed       int64
	Dt         float64
}

type ParamsRecord struct {
	Mass    float64 `json:"mass"`
	Height  float64 `json:"height"`
	Gravity float64 `json:"gravity"`
	Lateral float64 `json:"lateral"`
	Surface string  `json:"surface"`
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Engine         string             `json:"engine"`
	Integrator     string             `json:"integrator"`
	Seed           int64              `json:"seed"`
	Dt             float64            `json:"dt"`
	Params         ParamsRecord       `json:"params"`
	Reason         string             `json:"reason"`
	Frames         int                `json:"frames"`
	Fragmentations int                `json:"fragmentations"`
	Duration       float64            `json:"duration"`
	Samples        int                `json:"samples"`
	Metrics        map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("drop_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		Engine:     info.Engine,
		Integrator: info.Integrator,
		Seed:       info.Seed,
		Dt:         info.Dt,
		Params: ParamsRecord{
			Mass:    result.Params.Mass,
			Height:  result.Params.DropHeight,
			Gravity: result.Params.Gravity,
			Lateral: result.Params.LateralVelocity,
			Surface: result.Params.Surface.String(),
		},
		Reason:         string(result.Reason),
		Frames:         result.Frames,
		Fragmentations: result.Fragmentations,
		Duration:       result.Duration,
		Samples:        len(result.Samples),
		Metrics:        finiteMetrics(result.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, samples dynamo.SampleSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteCSV(f, samples); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes samples as a time,velocity table.
func WriteCSV(out io.Writer, samples dynamo.SampleSeries) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "velocity"}); err != nil {
		return err
	}
	for _, p := range samples {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', 6, 64),
			strconv.FormatFloat(p.Velocity, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

func (s *Store) LoadSamples(runID string) (dynamo.SampleSeries, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return dynamo.SampleSeries{}, nil
	}

	samples := make(dynamo.SampleSeries, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err1 := strconv.ParseFloat(record[0], 64)
		v, err2 := strconv.ParseFloat(record[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("run %s line %d: %w", runID, i+2, ErrBadSamples)
		}
		samples = append(samples, dynamo.Sample{Time: t, Velocity: v})
	}
	return samples, nil
}

type ExportData struct {
	RunMetadata
	Times      []float64 `json:"times"`
	Velocities []float64 `json:"velocities"`
}

// ExportJSON writes the metadata and samples of a run as one JSON
// document. Non-finite samples are omitted since JSON cannot hold them.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       make([]float64, 0, len(samples)),
		Velocities:  make([]float64, 0, len(samples)),
	}
	for _, p := range samples {
		if !finite(p.Time) || !finite(p.Velocity) {
			continue
		}
		data.Times = append(data.Times, p.Time)
		data.Velocities = append(data.Velocities, p.Velocity)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies the samples of a run to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, samples)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if finite(v) {
			out[k] = v
		}
	}
	return out
}

// Package storage persists runs as one directory each: metadata.json
// for listings, config.yaml to rebuild the exact setup, snapshots.csv
// with the trajectory, and reports/ with one JSON file per diagnostic.
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

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/config"
	"github.com/aram-vel/gravlab/internal/diag"
	"github.com/aram-vel/gravlab/internal/integrate"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// RunMetadata is the listing-level record of one run. Masses ride along
// so a trajectory can be reloaded into a complete ensemble without
// re-reading the config.
type RunMetadata struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	ForceModel string    `json:"force_model"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed"`
	Dt         float64   `json:"dt"`
	Steps      int       `json:"steps"`
	N          int       `json:"n"`
	Status     string    `json:"status"`
	ElapsedSec float64   `json:"elapsed_sec"`
	Drift      float64   `json:"energy_drift"`
	Masses     []float64 `json:"masses"`

	// Stats carries whatever per-run conservation numbers the caller
	// tracked through observers, keyed by stat name.
	Stats map[string]float64 `json:"stats,omitempty"`
}

// SaveRun writes one finished run under a fresh ID and returns it.
func (s *Store) SaveRun(label string, cfg *config.Config, res *integrate.Result, stats map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", label, cfg.ForceModel, time.Now().UnixNano())
	runDir := s.runDir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var masses []float64
	n := 0
	if first := res.Trajectory.First(); first != nil {
		masses = append([]float64(nil), first.Mass...)
		n = first.N()
	}

	meta := RunMetadata{
		ID:         runID,
		Label:      label,
		ForceModel: cfg.ForceModel,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Steps:      res.StepsTaken,
		N:          n,
		Status:     string(res.Status),
		ElapsedSec: res.Elapsed.Seconds(),
		Drift:      res.EnergyDrift,
		Masses:     masses,
		Stats:      stats,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, "config.yaml"), cfg); err != nil {
		return "", err
	}

	if err := s.writeSnapshots(runDir, &res.Trajectory); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func snapshotHeader(n int) []string {
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i), fmt.Sprintf("vz%d", i))
	}
	return header
}

// ff formats with enough digits to round-trip a float64 exactly, so a
// reloaded trajectory reproduces the stored run bit for bit.
func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

func (s *Store) writeSnapshots(runDir string, tr *body.Trajectory) error {
	csvFile, err := os.Create(filepath.Join(runDir, "snapshots.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if tr.Len() == 0 {
		return nil
	}
	n := tr.First().N()
	if err := w.Write(snapshotHeader(n)); err != nil {
		return err
	}

	row := make([]string, 0, 1+6*n)
	for _, f := range tr.Frames {
		row = row[:0]
		row = append(row, ff(f.Time))
		for i := 0; i < n; i++ {
			p, v := f.Pos[i], f.Vel[i]
			row = append(row, ff(p.X), ff(p.Y), ff(p.Z), ff(v.X), ff(v.Y), ff(v.Z))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns metadata for every stored run, oldest first. Directories
// without readable metadata are skipped.
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
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig rebuilds the exact configuration the run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.runDir(runID), "config.yaml"))
}

// LoadTrajectory reconstructs the stored trajectory with masses filled
// in, ready for the diagnostics.
func (s *Store) LoadTrajectory(runID string) (*body.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.runDir(runID), "snapshots.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &body.Trajectory{}
	if len(records) < 2 {
		return tr, nil
	}

	n := (len(records[0]) - 1) / 6
	if n != meta.N {
		return nil, fmt.Errorf("snapshots.csv has %d particles, metadata says %d", n, meta.N)
	}

	for rowIdx, rec := range records[1:] {
		if len(rec) != 1+6*n {
			return nil, fmt.Errorf("snapshots.csv row %d: %d fields, want %d", rowIdx+2, len(rec), 1+6*n)
		}
		vals := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("snapshots.csv row %d col %d: %w", rowIdx+2, j+1, err)
			}
			vals[j] = v
		}

		st := body.NewState(n)
		st.Time = vals[0]
		copy(st.Mass, meta.Masses)
		for i := 0; i < n; i++ {
			base := 1 + 6*i
			st.Pos[i].X, st.Pos[i].Y, st.Pos[i].Z = vals[base], vals[base+1], vals[base+2]
			st.Vel[i].X, st.Vel[i].Y, st.Vel[i].Z = vals[base+3], vals[base+4], vals[base+5]
		}
		tr.Frames = append(tr.Frames, st)
	}
	return tr, nil
}

// SaveReport stores one diagnostic report under reports/<name>.json.
func (s *Store) SaveReport(runID string, rep *diag.Report) error {
	dir := filepath.Join(s.runDir(runID), "reports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, rep.Name+".json"), rep)
}

func (s *Store) LoadReport(runID, name string) (*diag.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "reports", name+".json"))
	if err != nil {
		return nil, err
	}
	var rep diag.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// LoadReports returns every stored report for the run, sorted by name.
func (s *Store) LoadReports(runID string) ([]diag.Report, error) {
	dir := filepath.Join(s.runDir(runID), "reports")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []diag.Report{}, nil
		}
		return nil, err
	}

	reps := make([]diag.Report, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var rep diag.Report
		if err := json.Unmarshal(data, &rep); err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i].Name < reps[j].Name })
	return reps, nil
}

// ExportData is the self-contained JSON form of a stored run.
type ExportData struct {
	Meta    RunMetadata   `json:"meta"`
	Columns []string      `json:"columns"`
	Times   []float64     `json:"times"`
	Rows    [][]float64   `json:"rows"`
	Reports []diag.Report `json:"reports,omitempty"`
}

// ExportJSON writes the whole run (metadata, trajectory, any reports)
// as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	tr, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	reps, err := s.LoadReports(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Meta:    *meta,
		Columns: snapshotHeader(meta.N)[1:],
		Times:   tr.Times(),
		Rows:    make([][]float64, 0, tr.Len()),
		Reports: reps,
	}
	for _, f := range tr.Frames {
		row := make([]float64, 0, 6*meta.N)
		for i := 0; i < meta.N; i++ {
			p, v := f.Pos[i], f.Vel[i]
			row = append(row, p.X, p.Y, p.Z, v.X, v.Y, v.Z)
		}
		data.Rows = append(data.Rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV streams the stored snapshots.csv verbatim.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.runDir(runID), "snapshots.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Package registry is the long-lived owner of persisted entities: one
// JSON record file per config, test set and report, plus a single index
// document mapping IDs to metadata. The index is rewritten in full on
// every mutation; there is no partial-update protocol.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/firmlab/firmlab/internal/model"
)

// ErrNotFound is returned when an ID has no registry entry.
var ErrNotFound = errors.New("registry: not found")

const (
	configsDir  = "configs"
	testsetsDir = "testsets"
	reportsDir  = "reports"
	indexFile   = "index.json"
)

// ConfigEntry is the index metadata for one registered config.
type ConfigEntry struct {
	ID                string    `json:"id"`
	BoardName         string    `json:"board_name"`
	SoCID             string    `json:"soc_id"`
	Vendor            string    `json:"vendor"`
	CreatedAt         time.Time `json:"created_at"`
	CapabilitiesCount int       `json:"capabilities_count"`
	Status            string    `json:"status"`
	Path              string    `json:"path"`
}

// TestSetEntry is the index metadata for one registered test set.
type TestSetEntry struct {
	EmulatorID string    `json:"emulator_id"`
	TestCount  int       `json:"test_count"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
	Path       string    `json:"path"`
}

// ReportEntry is the index metadata for one registered report.
type ReportEntry struct {
	ReportID   string    `json:"report_id"`
	EmulatorID string    `json:"emulator_id"`
	BoardName  string    `json:"board_name"`
	Verdict    string    `json:"verdict"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
}

type index struct {
	Configs  map[string]ConfigEntry  `json:"configs"`
	TestSets map[string]TestSetEntry `json:"testsets"`
	Reports  map[string]ReportEntry  `json:"reports"`
}

// Registry stores entities under a root directory. Safe for concurrent
// use; mutations serialize on an internal mutex because each rewrites the
// shared index.
type Registry struct {
	root   string
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	idx index
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithClock overrides the timestamp source for index entries.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Open creates or reopens a registry rooted at dir. The entity
// subdirectories are created if missing; an existing index is loaded.
func Open(dir string, opts ...Option) (*Registry, error) {
	r := &Registry{
		root:   dir,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
		idx: index{
			Configs:  map[string]ConfigEntry{},
			TestSets: map[string]TestSetEntry{},
			Reports:  map[string]ReportEntry{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, sub := range []string{configsDir, testsetsDir, reportsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create registry dir %s: %w", sub, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fresh registry.
	case err != nil:
		return nil, fmt.Errorf("read registry index: %w", err)
	default:
		if err := json.Unmarshal(data, &r.idx); err != nil {
			return nil, fmt.Errorf("parse registry index: %w", err)
		}
	}
	return r, nil
}

// PutConfig writes the config record and updates the index.
func (r *Registry) PutConfig(cfg model.EmulatorConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.root, configsDir, cfg.EmulatorID+".json")
	if err := writeJSON(path, cfg); err != nil {
		return fmt.Errorf("write config %s: %w", cfg.EmulatorID, err)
	}

	r.idx.Configs[cfg.EmulatorID] = ConfigEntry{
		ID:                cfg.EmulatorID,
		BoardName:         cfg.BoardName,
		SoCID:             cfg.SoCID,
		Vendor:            cfg.Vendor,
		CreatedAt:         cfg.CreatedAt,
		CapabilitiesCount: len(cfg.Capabilities),
		Status:            string(cfg.Status),
		Path:              path,
	}
	if err := r.saveIndex(); err != nil {
		return err
	}
	r.logger.Info("config registered", "emulator_id", cfg.EmulatorID, "path", path)
	return nil
}

// GetConfig loads a registered config by emulator ID.
func (r *Registry) GetConfig(emulatorID string) (model.EmulatorConfig, error) {
	r.mu.Lock()
	entry, ok := r.idx.Configs[emulatorID]
	r.mu.Unlock()
	if !ok {
		return model.EmulatorConfig{}, fmt.Errorf("config %s: %w", emulatorID, ErrNotFound)
	}
	var cfg model.EmulatorConfig
	if err := readJSON(entry.Path, &cfg); err != nil {
		return model.EmulatorConfig{}, fmt.Errorf("read config %s: %w", emulatorID, err)
	}
	return cfg, nil
}

// ListConfigs returns index entries sorted by ID. vendor, when non-empty,
// filters case-insensitively.
func (r *Registry) ListConfigs(vendor string) []ConfigEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ConfigEntry, 0, len(r.idx.Configs))
	for _, e := range r.idx.Configs {
		if vendor != "" && !strings.EqualFold(e.Vendor, vendor) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutTestSet writes the generated test list for an emulator.
func (r *Registry) PutTestSet(emulatorID string, tests []model.TestCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.root, testsetsDir, emulatorID+"_tests.json")
	if err := writeJSON(path, tests); err != nil {
		return fmt.Errorf("write test set %s: %w", emulatorID, err)
	}

	seen := make(map[string]bool)
	var categories []string
	for _, t := range tests {
		if !seen[string(t.Category)] {
			seen[string(t.Category)] = true
			categories = append(categories, string(t.Category))
		}
	}
	sort.Strings(categories)

	r.idx.TestSets[emulatorID] = TestSetEntry{
		EmulatorID: emulatorID,
		TestCount:  len(tests),
		Categories: categories,
		CreatedAt:  r.now(),
		Path:       path,
	}
	if err := r.saveIndex(); err != nil {
		return err
	}
	r.logger.Info("test set registered", "emulator_id", emulatorID, "tests", len(tests))
	return nil
}

// GetTestSet loads the registered test list for an emulator.
func (r *Registry) GetTestSet(emulatorID string) ([]model.TestCase, error) {
	r.mu.Lock()
	entry, ok := r.idx.TestSets[emulatorID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("test set %s: %w", emulatorID, ErrNotFound)
	}
	var tests []model.TestCase
	if err := readJSON(entry.Path, &tests); err != nil {
		return nil, fmt.Errorf("read test set %s: %w", emulatorID, err)
	}
	return tests, nil
}

// PutReport writes the report record and updates the index.
func (r *Registry) PutReport(rpt model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.root, reportsDir, rpt.ReportID+".json")
	if err := writeJSON(path, rpt); err != nil {
		return fmt.Errorf("write report %s: %w", rpt.ReportID, err)
	}

	r.idx.Reports[rpt.ReportID] = ReportEntry{
		ReportID:   rpt.ReportID,
		EmulatorID: rpt.EmulatorID,
		BoardName:  rpt.BoardName,
		Verdict:    string(rpt.Verdict),
		Timestamp:  rpt.Timestamp,
		Path:       path,
	}
	if err := r.saveIndex(); err != nil {
		return err
	}
	r.logger.Info("report registered", "report_id", rpt.ReportID, "verdict", rpt.Verdict)
	return nil
}

// GetReport loads a registered report by ID.
func (r *Registry) GetReport(reportID string) (model.Report, error) {
	r.mu.Lock()
	entry, ok := r.idx.Reports[reportID]
	r.mu.Unlock()
	if !ok {
		return model.Report{}, fmt.Errorf("report %s: %w", reportID, ErrNotFound)
	}
	var rpt model.Report
	if err := readJSON(entry.Path, &rpt); err != nil {
		return model.Report{}, fmt.Errorf("read report %s: %w", reportID, err)
	}
	return rpt, nil
}

// ListReports returns report index entries sorted by report ID.
// emulatorID, when non-empty, restricts to that emulator's reports.
func (r *Registry) ListReports(emulatorID string) []ReportEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ReportEntry, 0, len(r.idx.Reports))
	for _, e := range r.idx.Reports {
		if emulatorID != "" && e.EmulatorID != emulatorID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportID < out[j].ReportID })
	return out
}

// saveIndex rewrites the index document in full. Callers hold r.mu.
func (r *Registry) saveIndex() error {
	if err := writeJSON(filepath.Join(r.root, indexFile), r.idx); err != nil {
		return fmt.Errorf("write registry index: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/flatball-sim/flatball/config"
)

// OutputManager handles structured match output with CSV logging.
type OutputManager struct {
	dir         string
	pointsFile  *os.File
	summaryFile *os.File

	pointsHeaderWritten bool
}

// NewOutputManager creates the output directory and opens the CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "points.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating points.csv: %w", err)
	}
	om.pointsFile = f

	f, err = os.Create(filepath.Join(dir, "match.csv"))
	if err != nil {
		om.pointsFile.Close()
		return nil, fmt.Errorf("creating match.csv: %w", err)
	}
	om.summaryFile = f

	return om, nil
}

// WriteConfig saves the active configuration alongside the results.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePoint appends one point record to points.csv.
func (om *OutputManager) WritePoint(rec PointRecord) error {
	if om == nil {
		return nil
	}

	records := []PointRecord{rec}
	if !om.pointsHeaderWritten {
		if err := gocsv.Marshal(records, om.pointsFile); err != nil {
			return fmt.Errorf("writing point record: %w", err)
		}
		om.pointsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.pointsFile); err != nil {
		return fmt.Errorf("writing point record: %w", err)
	}
	return nil
}

// WriteSummary writes the end-of-match stats row to match.csv.
func (om *OutputManager) WriteSummary(stats MatchStats) error {
	if om == nil {
		return nil
	}
	if err := gocsv.Marshal([]MatchStats{stats}, om.summaryFile); err != nil {
		return fmt.Errorf("writing match summary: %w", err)
	}
	return nil
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var first error
	if err := om.pointsFile.Close(); err != nil {
		first = err
	}
	if err := om.summaryFile.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

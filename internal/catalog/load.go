package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
)

// SBDB CSV columns used by the model.
const (
	colDesignation = "pdes"
	colName        = "name"
	colDiameter    = "diameter"
	colHazardous   = "pha"
)

// LoadStats counts rows seen, kept, and skipped by a loader.
type LoadStats struct {
	Rows    int
	Loaded  int
	Skipped int
}

// LoadNEOs reads an SBDB CSV export. Rows with a malformed diameter or too
// few columns are logged and skipped; only I/O and header errors are returned.
func LoadNEOs(r io.Reader, logger *slog.Logger) ([]*domain.NearEarthObject, LoadStats, error) {
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read neo header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{colDesignation, colName, colDiameter, colHazardous} {
		if _, ok := colIdx[col]; !ok {
			return nil, stats, fmt.Errorf("neo csv missing column %q", col)
		}
	}

	var neos []*domain.NearEarthObject
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read neo row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++
		line := stats.Rows + 1

		if len(row) < len(header) {
			logger.Warn("skipping short neo row", "line", line, "columns", len(row))
			stats.Skipped++
			continue
		}

		field := func(col string) string { return strings.TrimSpace(row[colIdx[col]]) }
		neo, err := domain.NewNearEarthObject(
			field(colDesignation),
			field(colName),
			field(colDiameter),
			field(colHazardous),
		)
		if err != nil {
			logger.Warn("skipping malformed neo row", "line", line, "error", err)
			stats.Skipped++
			continue
		}
		neos = append(neos, neo)
		stats.Loaded++
	}

	return neos, stats, nil
}

// LoadApproaches reads a CAD JSON document. Rows with a malformed time,
// distance, or velocity are logged and skipped.
func LoadApproaches(r io.Reader, logger *slog.Logger) ([]*domain.CloseApproach, LoadStats, error) {
	var stats LoadStats

	var resp domain.CADResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, stats, fmt.Errorf("decode cad json: %w", err)
	}
	records, err := resp.Records()
	if err != nil {
		return nil, stats, err
	}

	approaches := BuildApproaches(records, &stats, logger)
	return approaches, stats, nil
}

// BuildApproaches constructs approaches from raw CAD records, skipping and
// counting the malformed ones in stats.
func BuildApproaches(records []domain.RawApproachRecord, stats *LoadStats, logger *slog.Logger) []*domain.CloseApproach {
	approaches := make([]*domain.CloseApproach, 0, len(records))
	for i, rec := range records {
		stats.Rows++
		ca, err := domain.NewCloseApproachFromRecord(rec)
		if err != nil {
			logger.Warn("skipping malformed approach row", "index", i, "error", err)
			stats.Skipped++
			continue
		}
		approaches = append(approaches, ca)
		stats.Loaded++
	}
	return approaches
}

// LoadNEOFile opens path and builds a Catalog from it.
func LoadNEOFile(path string, logger *slog.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open neo catalog: %w", err)
	}
	defer f.Close()

	neos, stats, err := LoadNEOs(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Info("neo catalog loaded", "path", path, "rows", stats.Rows, "loaded", stats.Loaded, "skipped", stats.Skipped)
	return New(neos), nil
}

// LoadFiles builds a Catalog from an SBDB CSV and links the approaches from a CAD JSON file.
func LoadFiles(neoPath, cadPath string, logger *slog.Logger) (*Catalog, error) {
	c, err := LoadNEOFile(neoPath, logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(cadPath)
	if err != nil {
		return nil, fmt.Errorf("open cad data: %w", err)
	}
	defer f.Close()

	approaches, stats, err := LoadApproaches(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cadPath, err)
	}
	if err := c.LinkAndLog(approaches, stats, logger); err != nil {
		return nil, err
	}
	return c, nil
}

// LinkAndLog links approaches and logs the load summary.
func (c *Catalog) LinkAndLog(approaches []*domain.CloseApproach, stats LoadStats, logger *slog.Logger) error {
	linked, orphaned, err := c.Link(approaches)
	if err != nil {
		return fmt.Errorf("link approaches: %w", err)
	}
	logger.Info("close approaches linked",
		"rows", stats.Rows,
		"skipped", stats.Skipped,
		"linked", linked,
		"orphaned", orphaned,
	)
	return nil
}

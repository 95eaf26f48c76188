// Command genmock generates a synthetic CAD JSON fixture for the source topic
// and, optionally, the linked output the pipeline would produce for it. Row
// designations are sampled from the NEO catalog so most rows link; -orphans
// controls the share that name objects outside the catalog.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -neos data/neos.csv \
//	  -count 500 -seed 42 \
//	  -out data/mock/cad_synthetic.json \
//	  -linked-out data/mock/cad_synthetic_linked.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/couchcryptid/neo-approach-etl/internal/catalog"
	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

const cadTimeLayout = "2006-Jan-02 15:04"

var (
	windowStart = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)
)

var cadFields = []string{"des", "orbit_id", "jd", "cd", "dist", "dist_min", "dist_max", "v_rel", "v_inf", "t_sigma_f", "h"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	neoPath := flag.String("neos", "data/neos.csv", "path to the SBDB NEO CSV export")
	count := flag.Int("count", 100, "number of approach rows to generate")
	seed := flag.Int64("seed", 1, "random seed; the same seed reproduces the same fixture")
	orphans := flag.Float64("orphans", 0.1, "fraction of rows naming objects outside the catalog")
	out := flag.String("out", "", "output path for the CAD JSON fixture")
	linkedOut := flag.String("linked-out", "", "optional output path for the linked approach records")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *count <= 0 || *orphans < 0 || *orphans > 1 {
		return fmt.Errorf("-count must be positive and -orphans within [0, 1]")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat, err := catalog.LoadNEOFile(*neoPath, logger)
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		return fmt.Errorf("%s holds no NEOs", *neoPath)
	}

	faker := gofakeit.New(*seed)
	resp := generate(faker, cat, *count, *orphans)

	if err := writeJSON(*out, resp); err != nil {
		return fmt.Errorf("writing CAD fixture: %w", err)
	}
	log.Printf("wrote %d rows: %s", len(resp.Data), *out)

	if *linkedOut == "" {
		return nil
	}

	// Fixed clock for reproducible processed_at stamps.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	linked, stats, err := link(cat, resp)
	if err != nil {
		return err
	}
	if err := writeJSON(*linkedOut, linked); err != nil {
		return fmt.Errorf("writing linked fixture: %w", err)
	}
	log.Printf("wrote %d linked records (%d unlinked): %s", len(linked), stats.unlinked, *linkedOut)
	return nil
}

// generate builds count CAD rows. Designations come from cat except for the
// orphan share, which gets synthetic provisional designations.
func generate(faker *gofakeit.Faker, cat *catalog.Catalog, count int, orphans float64) domain.CADResponse {
	neos := cat.NEOs()

	var resp domain.CADResponse
	resp.Signature.Source = "genmock synthetic CAD data"
	resp.Signature.Version = "1.5"
	resp.Fields = cadFields
	resp.Data = make([][]*string, 0, count)

	for range count {
		designation := neos[faker.Number(0, len(neos)-1)].Designation
		if faker.Float64Range(0, 1) < orphans {
			designation = fmt.Sprintf("%d %s%d", faker.Number(1990, 2030), strings.ToUpper(faker.LetterN(2)), faker.Number(1, 99))
		}

		when := faker.DateRange(windowStart, windowEnd).UTC().Truncate(time.Minute)
		dist := faker.Float64Range(0.0001, 0.5)
		spread := dist * faker.Float64Range(0, 0.001)
		vRel := faker.Float64Range(1, 40)

		resp.Data = append(resp.Data, []*string{
			str(designation),
			str(fmt.Sprintf("%d", faker.Number(1, 700))),
			str(fmt.Sprintf("%.9f", julianDate(when))),
			str(when.Format(cadTimeLayout)),
			str(fmt.Sprintf("%.10f", dist)),
			str(fmt.Sprintf("%.10f", dist-spread)),
			str(fmt.Sprintf("%.10f", dist+spread)),
			str(fmt.Sprintf("%.7f", vRel)),
			str(fmt.Sprintf("%.7f", vRel*faker.Float64Range(0.95, 1))),
			str(fmt.Sprintf("00:%02d", faker.Number(1, 59))),
			nullable(faker, fmt.Sprintf("%.1f", faker.Float64Range(10, 30))),
		})
	}
	return resp
}

type linkStats struct {
	unlinked int
}

// link runs every generated row through the same parse, attach, and serialize
// steps the pipeline uses.
func link(cat *catalog.Catalog, resp domain.CADResponse) ([]domain.ApproachRecord, linkStats, error) {
	var stats linkStats
	records, err := resp.Records()
	if err != nil {
		return nil, stats, err
	}

	out := make([]domain.ApproachRecord, 0, len(records))
	for _, rec := range records {
		ca, err := domain.NewCloseApproachFromRecord(rec)
		if err != nil {
			return nil, stats, err
		}
		held, err := cat.Attach(ca)
		if err != nil {
			return nil, stats, err
		}
		if held == nil {
			stats.unlinked++
		} else {
			ca = held
		}

		ev, err := domain.SerializeApproach(ca)
		if err != nil {
			return nil, stats, err
		}
		var ar domain.ApproachRecord
		if err := json.Unmarshal(ev.Value, &ar); err != nil {
			return nil, stats, err
		}
		out = append(out, ar)
	}
	return out, stats, nil
}

// julianDate converts t to a Julian Date (TDB is approximated by UTC).
func julianDate(t time.Time) float64 {
	const unixEpochJD = 2440587.5
	return unixEpochJD + float64(t.Unix())/86400
}

func str(s string) *string { return &s }

// nullable returns nil for roughly one cell in ten, as CAD does for unknown magnitudes.
func nullable(faker *gofakeit.Faker, s string) *string {
	if faker.Number(1, 10) == 1 {
		return nil
	}
	return &s
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

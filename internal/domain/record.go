package domain

import (
	"context"
	"fmt"
	"time"
)

// RawApproachRecord is one CAD row as flat JSON, keyed by CAD field name.
// Only des, cd, dist, and v_rel feed the model; the rest ride along for
// downstream consumers.
type RawApproachRecord struct {
	Designation string `json:"des"`
	OrbitID     string `json:"orbit_id,omitempty"`
	JD          string `json:"jd,omitempty"`
	Time        string `json:"cd"`
	Distance    string `json:"dist"`
	DistanceMin string `json:"dist_min,omitempty"`
	DistanceMax string `json:"dist_max,omitempty"`
	Velocity    string `json:"v_rel"`
	VelocityInf string `json:"v_inf,omitempty"`
	TSigma      string `json:"t_sigma_f,omitempty"`
	H           string `json:"h,omitempty"`
}

// CADResponse is the body of a CAD API query and of the cad.json export.
type CADResponse struct {
	Signature struct {
		Source  string `json:"source"`
		Version string `json:"version"`
	} `json:"signature"`
	Fields []string    `json:"fields"`
	Data   [][]*string `json:"data"`
}

// Records maps each data row onto a RawApproachRecord by field name.
// Null cells become empty strings; unknown fields are ignored.
func (r CADResponse) Records() ([]RawApproachRecord, error) {
	index := make(map[string]int, len(r.Fields))
	for i, f := range r.Fields {
		index[f] = i
	}
	for _, required := range []string{"des", "cd", "dist", "v_rel"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("cad response missing field %q", required)
		}
	}

	cell := func(row []*string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) || row[i] == nil {
			return ""
		}
		return *row[i]
	}

	records := make([]RawApproachRecord, 0, len(r.Data))
	for _, row := range r.Data {
		records = append(records, RawApproachRecord{
			Designation: cell(row, "des"),
			OrbitID:     cell(row, "orbit_id"),
			JD:          cell(row, "jd"),
			Time:        cell(row, "cd"),
			Distance:    cell(row, "dist"),
			DistanceMin: cell(row, "dist_min"),
			DistanceMax: cell(row, "dist_max"),
			Velocity:    cell(row, "v_rel"),
			VelocityInf: cell(row, "v_inf"),
			TSigma:      cell(row, "t_sigma_f"),
			H:           cell(row, "h"),
		})
	}
	return records, nil
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// NEORecord is the serialized form of a NearEarthObject.
type NEORecord struct {
	Designation string   `json:"designation"`
	Name        string   `json:"name"`
	DiameterKM  *float64 `json:"diameter_km"` // null when unknown
	Hazardous   bool     `json:"potentially_hazardous"`
}

// ApproachRecord is the serialized form of a CloseApproach.
type ApproachRecord struct {
	ID          string     `json:"id"`
	Designation string     `json:"designation"`
	DateTimeUTC string     `json:"datetime_utc"`
	DistanceAU  float64    `json:"distance_au"`
	VelocityKMS float64    `json:"velocity_km_s"`
	NEO         *NEORecord `json:"neo"`
	ProcessedAt time.Time  `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

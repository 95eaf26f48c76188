package domain

import (
	"fmt"
	"math"
	"strconv"
)

// NearEarthObject is one physical object from the SBDB catalog.
type NearEarthObject struct {
	Designation string
	Name        *string // nil when the object has no IAU name
	Diameter    float64 // kilometers, NaN when unknown
	Hazardous   bool

	// Approaches is populated by Link in append order. No time ordering is implied.
	Approaches []*CloseApproach
}

// NewNearEarthObject builds a NearEarthObject from raw SBDB fields.
// Empty name and diameter are normal and map to nil and NaN respectively;
// a non-empty diameter that does not parse is an error.
func NewNearEarthObject(designation, name, diameter, hazardous string) (*NearEarthObject, error) {
	d, err := parseDiameter(diameter)
	if err != nil {
		return nil, fmt.Errorf("neo %q: %w", designation, err)
	}

	neo := &NearEarthObject{
		Designation: designation,
		Diameter:    d,
		Hazardous:   hazardous == "Y",
		Approaches:  []*CloseApproach{},
	}
	if name != "" {
		neo.Name = &name
	}
	return neo, nil
}

func parseDiameter(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return parseFloatField("diameter", s)
}

// parseFloatField parses a required finite numeric field, wrapping failures
// in ErrMalformedNumeric.
func parseFloatField(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedNumeric, field, s)
	}
	return v, nil
}

// FullName returns "designation (name)", or the designation alone for unnamed objects.
func (n *NearEarthObject) FullName() string {
	if n.Name == nil {
		return n.Designation
	}
	return fmt.Sprintf("%s (%s)", n.Designation, *n.Name)
}

// HasDiameter reports whether the diameter is known.
func (n *NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.Diameter)
}

func (n *NearEarthObject) String() string {
	size := "an unknown diameter"
	if n.HasDiameter() {
		size = fmt.Sprintf("a diameter of %.3f", n.Diameter)
	}
	return fmt.Sprintf("The NearEarthObject '%s' has %s km and %s potentially hazardous.",
		n.FullName(), size, isOrIsNot(n.Hazardous))
}

// GoString is the field-labeled debugging form, also used by %#v.
func (n *NearEarthObject) GoString() string {
	return fmt.Sprintf("NearEarthObject(designation=%q, name=%s, diameter=%.3f, hazardous=%t)",
		n.Designation, quoteOrNone(n.Name), n.Diameter, n.Hazardous)
}

// Serialize returns the flat record written to the sink topic and the HTTP API.
func (n *NearEarthObject) Serialize() NEORecord {
	rec := NEORecord{
		Designation: n.Designation,
		Hazardous:   n.Hazardous,
	}
	if n.Name != nil {
		rec.Name = *n.Name
	}
	if n.HasDiameter() {
		d := n.Diameter
		rec.DiameterKM = &d
	}
	return rec
}

func isOrIsNot(b bool) string {
	if b {
		return "is"
	}
	return "is not"
}

func quoteOrNone(s *string) string {
	if s == nil {
		return noneLiteral
	}
	return strconv.Quote(*s)
}

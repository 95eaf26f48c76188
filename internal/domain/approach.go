package domain

import (
	"fmt"
	"time"
)

// noneLiteral stands in for an absent object in rendered output.
const noneLiteral = "None"

// CloseApproach is one recorded pass of an NEO near Earth.
type CloseApproach struct {
	designation string

	Time     time.Time // UTC instant of closest approach
	Distance float64   // astronomical units
	Velocity float64   // km/s relative to Earth

	// NEO is nil until the approach is linked.
	NEO *NearEarthObject
}

// NewCloseApproach builds a CloseApproach from raw CAD fields.
// Malformed time, distance, or velocity values are returned as errors so the
// caller can skip the row.
func NewCloseApproach(designation, timeStr, distance, velocity string) (*CloseApproach, error) {
	t, err := ParseApproachTime(timeStr)
	if err != nil {
		return nil, fmt.Errorf("approach of %q: %w", designation, err)
	}
	dist, err := parseFloatField("distance", distance)
	if err != nil {
		return nil, fmt.Errorf("approach of %q: %w", designation, err)
	}
	vel, err := parseFloatField("velocity", velocity)
	if err != nil {
		return nil, fmt.Errorf("approach of %q: %w", designation, err)
	}

	return &CloseApproach{
		designation: designation,
		Time:        t,
		Distance:    dist,
		Velocity:    vel,
	}, nil
}

// Designation returns the primary designation of the approaching object as
// read from the source row. It is the key used to find the NEO when linking.
func (c *CloseApproach) Designation() string {
	return c.designation
}

// TimeStr returns the approach time as "YYYY-MM-DD HH:MM".
func (c *CloseApproach) TimeStr() string {
	return FormatApproachTime(c.Time)
}

func (c *CloseApproach) String() string {
	name := noneLiteral
	if c.NEO != nil {
		name = c.NEO.FullName()
	}
	return fmt.Sprintf("At %s, '%s' approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		c.TimeStr(), name, c.Distance, c.Velocity)
}

// GoString is the field-labeled debugging form, also used by %#v.
func (c *CloseApproach) GoString() string {
	neo := noneLiteral
	if c.NEO != nil {
		neo = c.NEO.GoString()
	}
	return fmt.Sprintf("CloseApproach(time=%q, distance=%.2f, velocity=%.2f, neo=%s)",
		c.TimeStr(), c.Distance, c.Velocity, neo)
}

// Serialize returns the flat record written to the sink topic.
func (c *CloseApproach) Serialize() ApproachRecord {
	rec := ApproachRecord{
		ID:          ApproachID(c.designation, c.Time),
		Designation: c.designation,
		DateTimeUTC: c.TimeStr(),
		DistanceAU:  c.Distance,
		VelocityKMS: c.Velocity,
	}
	if c.NEO != nil {
		neo := c.NEO.Serialize()
		rec.NEO = &neo
	}
	return rec
}

// Link connects an approach to its NEO in both directions. Linking the same
// pair again is a no-op; linking an approach to a different NEO returns
// ErrAlreadyLinked.
func Link(neo *NearEarthObject, ca *CloseApproach) error {
	if ca.NEO != nil {
		if ca.NEO == neo {
			return nil
		}
		return fmt.Errorf("%w: %s is linked to %s, not %s",
			ErrAlreadyLinked, ca.designation, ca.NEO.Designation, neo.Designation)
	}
	neo.Approaches = append(neo.Approaches, ca)
	ca.NEO = neo
	return nil
}

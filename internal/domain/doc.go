// Package domain models near-Earth objects (NEOs) and their close approaches
// to Earth.
//
// # Data Sources
//
// NEO records come from the JPL Small-Body Database (SBDB) query tool,
// exported as CSV. Close-approach records come from the JPL SSD Close
// Approach Data (CAD) API, https://ssd-api.jpl.nasa.gov/cad.api, whose JSON
// response carries a "fields" header and a "data" array of string rows. The
// upstream collector publishes each CAD row as flat JSON to the Kafka source
// topic; see [RawApproachRecord].
//
// # SBDB Conventions
//
// Designation ("pdes"):
//
//	Primary designation, always present and unique, e.g. "433" or "2020 AB".
//
// Name ("name"):
//
//	IAU name, empty for most objects. An empty string becomes a nil Name.
//
// Diameter ("diameter"):
//
//	Kilometers as a decimal string, empty when unknown. An empty string
//	becomes NaN; use [NearEarthObject.HasDiameter] rather than comparing
//	against NaN, which is never equal to itself.
//
// Hazard flag ("pha"):
//
//	"Y" marks a potentially hazardous asteroid. "N", "", and any other value
//	(including lowercase "y") mean not hazardous.
//
// # CAD Conventions
//
// Time format ("cd"):
//
//	"2006-Jan-02 15:04" in TDB, treated as UTC, e.g. "1900-Jan-01 00:11".
//	The compact form "M/D/YY H:MM" is also accepted; two-digit years follow
//	Go's pivot (69-99 map to 1900s, 00-68 to 2000s). Seconds are never present in
//	the source and are never rendered, see [FormatApproachTime].
//
// Distance ("dist") is the nominal approach distance in astronomical units.
// Velocity ("v_rel") is the velocity relative to Earth in km/s.
//
// # Linking
//
// Both entities are constructed independently from raw rows. A catalog then
// calls [Link] once per approach, which appends the approach to its NEO's
// Approaches and sets the approach's NEO back-reference. Until then the
// approach renders its object as None.
//
// # ID Generation
//
// Approach IDs are deterministic UUIDv5 values over designation|time, so a
// replayed CAD row produces the same Kafka key. See [ApproachID].
package domain

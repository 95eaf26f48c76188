// Package catalog owns the NEO collection and links close approaches to it.
//
// The catalog is built once from the SBDB export before the pipeline starts.
// After that, [Catalog.Attach] is the only writer: it links streamed
// approaches under a lock so the HTTP lookup handler can read approach counts
// concurrently.
package catalog

import (
	"sync"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
)

// Catalog indexes NEOs by designation and IAU name.
type Catalog struct {
	mu            sync.RWMutex
	neos          []*domain.NearEarthObject
	byDesignation map[string]*domain.NearEarthObject
	byName        map[string]*domain.NearEarthObject
	byApproachID  map[string]*domain.CloseApproach // guarded by mu
}

// New builds a Catalog over neos. On duplicate designations or names the first entry wins.
func New(neos []*domain.NearEarthObject) *Catalog {
	c := &Catalog{
		neos:          neos,
		byDesignation: make(map[string]*domain.NearEarthObject, len(neos)),
		byName:        make(map[string]*domain.NearEarthObject),
		byApproachID:  make(map[string]*domain.CloseApproach),
	}
	for _, neo := range neos {
		if _, ok := c.byDesignation[neo.Designation]; !ok {
			c.byDesignation[neo.Designation] = neo
		}
		if neo.Name != nil {
			if _, ok := c.byName[*neo.Name]; !ok {
				c.byName[*neo.Name] = neo
			}
		}
	}
	return c
}

// Len returns the number of NEOs in the catalog.
func (c *Catalog) Len() int {
	return len(c.neos)
}

// NEOs returns the catalog's objects in load order.
func (c *Catalog) NEOs() []*domain.NearEarthObject {
	return c.neos
}

// ByDesignation returns the NEO with the given primary designation, or nil.
func (c *Catalog) ByDesignation(designation string) *domain.NearEarthObject {
	return c.byDesignation[designation]
}

// ByName returns the NEO with the given IAU name, or nil.
func (c *Catalog) ByName(name string) *domain.NearEarthObject {
	return c.byName[name]
}

// Attach links ca to the NEO named by its designation and returns the
// approach the catalog now holds for it. A replay of an approach already in
// the catalog (same designation and time) returns the earlier approach and
// leaves ca unlinked, so each logical approach is linked once. Attach returns
// nil when no NEO matches.
func (c *Catalog) Attach(ca *domain.CloseApproach) (*domain.CloseApproach, error) {
	neo := c.byDesignation[ca.Designation()]
	if neo == nil {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ca.NEO != nil {
		if err := domain.Link(neo, ca); err != nil {
			return nil, err
		}
		return ca, nil
	}

	id := domain.ApproachID(ca.Designation(), ca.Time)
	if held, ok := c.byApproachID[id]; ok {
		return held, nil
	}
	if err := domain.Link(neo, ca); err != nil {
		return nil, err
	}
	c.byApproachID[id] = ca
	return ca, nil
}

// Link attaches every approach and returns how many were linked and how many
// had no matching NEO.
func (c *Catalog) Link(approaches []*domain.CloseApproach) (linked, orphaned int, err error) {
	for _, ca := range approaches {
		held, err := c.Attach(ca)
		if err != nil {
			return linked, orphaned, err
		}
		if held != nil {
			linked++
		} else {
			orphaned++
		}
	}
	return linked, orphaned, nil
}

// ApproachCount returns the number of approaches linked to neo.
func (c *Catalog) ApproachCount(neo *domain.NearEarthObject) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(neo.Approaches)
}

// Approaches returns a copy of the approaches linked to neo.
func (c *Catalog) Approaches(neo *domain.NearEarthObject) []*domain.CloseApproach {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.CloseApproach, len(neo.Approaches))
	copy(out, neo.Approaches)
	return out
}

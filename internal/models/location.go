// Package models defines data structures and domain types.
package models

import "fmt"

// Location is a single monitored venue. It is immutable once loaded from the
// roster store.
type Location struct {
	ID          string `json:"locationId" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

// String returns the "Name (ID)" label used in titles and logs.
func (l Location) String() string {
	return fmt.Sprintf("%s (%s)", l.DisplayName, l.ID)
}

// Roster is the ordered set of locations monitored for one project.
type Roster struct {
	Project   string     `json:"project" validate:"required"`
	Locations []Location `json:"locations" validate:"min=1,unique=ID,dive"`
}

// Len returns the number of locations in the roster.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Locations)
}

// Find returns the location with the given ID.
func (r *Roster) Find(id string) (Location, bool) {
	if r == nil {
		return Location{}, false
	}
	for _, loc := range r.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return Location{}, false
}

// Index returns the roster position of every location ID.
func (r *Roster) Index() map[string]int {
	idx := make(map[string]int, r.Len())
	if r == nil {
		return idx
	}
	for i, loc := range r.Locations {
		if _, dup := idx[loc.ID]; !dup {
			idx[loc.ID] = i
		}
	}
	return idx
}

// ProjectSummary is a project known to the roster store.
type ProjectSummary struct {
	Name          string
	LocationCount int
}

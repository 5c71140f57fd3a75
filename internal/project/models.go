package project

import "time"

// TimestampLayout is the fixed wire format for creation and expiry dates
// ("05112017 00:00:00" is May 11 2017, midnight).
const TimestampLayout = "01022006 15:04:05"

// Project is the primary targeting record.
//
// Invariants:
//   - ID is caller-supplied, unique, and immutable; it doubles as the group
//     id joining the project's Country and Key rows.
//   - A project is either fully present with all its Country/Key rows or
//     entirely absent; partial groups are never observable.
//   - There is no update or delete path; rows persist for the lifetime of
//     the store.
type Project struct {
	ID           int64
	Name         string
	CreationDate time.Time
	ExpiryDate   time.Time
	Enabled      bool
	Cost         float64
	URL          *string // nil when no destination URL was supplied
}

// Eligible reports whether the project may be returned by best-match
// selection: expiry strictly in the future, enabled, and a non-empty
// destination URL. Direct lookup by id bypasses this predicate.
func (p *Project) Eligible(now time.Time) bool {
	return p.ExpiryDate.After(now) && p.Enabled && p.URL != nil && *p.URL != ""
}

// Projection is the caller-facing view of a selected project.
type Projection struct {
	Name string  `json:"projectName"`
	Cost float64 `json:"projectCost"`
	URL  *string `json:"projectUrl"`
}

// Projection returns the selection view of the project.
func (p *Project) Projection() Projection {
	return Projection{Name: p.Name, Cost: p.Cost, URL: p.URL}
}

// Country is one target-country row. Many rows may share a GroupID: the
// relation is one-to-many on purpose, a uniqueness constraint here would
// break multi-country projects.
type Country struct {
	ID      int64
	GroupID int64
	Country string
}

// Key is one (threshold, keyword) targeting pair, one-to-many with Project
// via GroupID like Country.
type Key struct {
	ID      int64
	GroupID int64
	Number  int64
	Keyword string
}

// Group bundles a project with its country and key rows for atomic creation.
type Group struct {
	Project   Project
	Countries []Country
	Keys      []Key
}

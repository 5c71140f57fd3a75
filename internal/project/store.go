package project

import (
	"context"
	"time"
)

// Match restricts best-match selection. Now drives the eligibility
// predicate; the other fields are optional caller filters, AND-combined
// when set.
type Match struct {
	Now       time.Time
	Country   *string
	MinNumber *int64
	Keyword   *string
}

// Store is the entity store for projects and their country/key rows.
// Implementations must be safe for concurrent use; the external contract is
// "no caller-visible interleaving corruption".
type Store interface {
	// CreateGroup persists the project together with all its country and
	// key rows as one all-or-nothing unit. A duplicate project id fails the
	// whole group with sentinel.ErrConflict and leaves no partial rows.
	CreateGroup(ctx context.Context, group Group) error

	// FindByID returns the project with the given id regardless of
	// eligibility, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Project, error)

	// BestMatch returns the eligible project with the maximum cost among
	// those satisfying every set filter, or sentinel.ErrNotFound. Equal
	// costs break toward the lowest project id.
	BestMatch(ctx context.Context, match Match) (*Project, error)
}

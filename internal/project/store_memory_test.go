package project

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"projectdir/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
}

// eligibleProject builds a project that passes the eligibility predicate at
// s.now; tests override fields to break individual conditions.
func (s *MemoryStoreSuite) eligibleProject(id int64, cost float64) Project {
	url := "http://x.com"
	return Project{
		ID:           id,
		Name:         "project",
		CreationDate: s.now.AddDate(-1, 0, 0),
		ExpiryDate:   s.now.AddDate(1, 0, 0),
		Enabled:      true,
		Cost:         cost,
		URL:          &url,
	}
}

func (s *MemoryStoreSuite) mustCreate(g Group) {
	s.Require().NoError(s.store.CreateGroup(s.ctx, g))
}

func (s *MemoryStoreSuite) TestCreateGroupAndLookup() {
	g := Group{
		Project: s.eligibleProject(1, 1.25),
		Countries: []Country{
			{Country: "USA"},
			{Country: "Brazil"},
		},
		Keys: []Key{
			{Number: 25, Keyword: "movies"},
			{Number: 55, Keyword: "sports"},
		},
	}
	s.mustCreate(g)

	found, err := s.store.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(g.Project.Name, found.Name)
	s.Equal(g.Project.Cost, found.Cost)

	countries := s.store.CountryRows(1)
	s.Require().Len(countries, 2)
	for _, c := range countries {
		s.Equal(int64(1), c.GroupID)
	}

	keys := s.store.KeyRows(1)
	s.Require().Len(keys, 2)
	for _, k := range keys {
		s.Equal(int64(1), k.GroupID)
	}
}

func (s *MemoryStoreSuite) TestFindByIDUnknown() {
	_, err := s.store.FindByID(s.ctx, 42)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDuplicateIDConflict() {
	first := Group{
		Project:   s.eligibleProject(1, 1.0),
		Countries: []Country{{Country: "USA"}},
		Keys:      []Key{{Number: 10, Keyword: "movies"}},
	}
	first.Project.Name = "original"
	s.mustCreate(first)

	dup := Group{
		Project:   s.eligibleProject(1, 9.0),
		Countries: []Country{{Country: "France"}, {Country: "Spain"}},
	}
	err := s.store.CreateGroup(s.ctx, dup)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	// The rejected group must leave no partial rows behind.
	found, err := s.store.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("original", found.Name)
	s.Len(s.store.CountryRows(1), 1)
	s.Len(s.store.KeyRows(1), 1)
}

func (s *MemoryStoreSuite) TestBestMatchEligibility() {
	expired := s.eligibleProject(1, 10.0)
	expired.ExpiryDate = s.now.AddDate(-1, 0, 0)

	disabled := s.eligibleProject(2, 10.0)
	disabled.Enabled = false

	noURL := s.eligibleProject(3, 10.0)
	noURL.URL = nil

	emptyURL := s.eligibleProject(4, 10.0)
	empty := ""
	emptyURL.URL = &empty

	eligible := s.eligibleProject(5, 1.0)

	for _, p := range []Project{expired, disabled, noURL, emptyURL, eligible} {
		s.mustCreate(Group{Project: p})
	}

	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now})
	s.Require().NoError(err)
	s.Equal(int64(5), best.ID, "only the eligible project may win, regardless of cost")
}

func (s *MemoryStoreSuite) TestBestMatchExpiryIsStrict() {
	onTheDot := s.eligibleProject(1, 1.0)
	onTheDot.ExpiryDate = s.now
	s.mustCreate(Group{Project: onTheDot})

	_, err := s.store.BestMatch(s.ctx, Match{Now: s.now})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestBestMatchMaxCost() {
	s.mustCreate(Group{Project: s.eligibleProject(1, 1.5)})
	s.mustCreate(Group{Project: s.eligibleProject(2, 2.0)})
	s.mustCreate(Group{Project: s.eligibleProject(3, 0.5)})

	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now})
	s.Require().NoError(err)
	s.Equal(int64(2), best.ID)
	s.Equal(2.0, best.Cost)
}

func (s *MemoryStoreSuite) TestBestMatchTieBreaksTowardLowestID() {
	s.mustCreate(Group{Project: s.eligibleProject(9, 2.0)})
	s.mustCreate(Group{Project: s.eligibleProject(3, 2.0)})
	s.mustCreate(Group{Project: s.eligibleProject(7, 2.0)})

	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now})
	s.Require().NoError(err)
	s.Equal(int64(3), best.ID)
}

func (s *MemoryStoreSuite) TestBestMatchCountryFilter() {
	s.mustCreate(Group{
		Project:   s.eligibleProject(1, 1.25),
		Countries: []Country{{Country: "USA"}, {Country: "Brazil"}},
	})

	usa := "USA"
	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now, Country: &usa})
	s.Require().NoError(err)
	s.Equal(int64(1), best.ID)

	france := "France"
	_, err = s.store.BestMatch(s.ctx, Match{Now: s.now, Country: &france})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestBestMatchNumberFilter() {
	s.mustCreate(Group{
		Project: s.eligibleProject(1, 1.25),
		Keys:    []Key{{Number: 25, Keyword: "movies"}, {Number: 55, Keyword: "sports"}},
	})

	thirty := int64(30)
	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now, MinNumber: &thirty})
	s.Require().NoError(err, "55 >= 30 should match")
	s.Equal(int64(1), best.ID)

	sixty := int64(60)
	_, err = s.store.BestMatch(s.ctx, Match{Now: s.now, MinNumber: &sixty})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestBestMatchKeywordFilter() {
	s.mustCreate(Group{
		Project: s.eligibleProject(1, 1.25),
		Keys:    []Key{{Number: 25, Keyword: "movies"}},
	})

	movies := "movies"
	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now, Keyword: &movies})
	s.Require().NoError(err)
	s.Equal(int64(1), best.ID)

	music := "music"
	_, err = s.store.BestMatch(s.ctx, Match{Now: s.now, Keyword: &music})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestBestMatchFiltersANDCompose() {
	s.mustCreate(Group{
		Project:   s.eligibleProject(1, 1.0),
		Countries: []Country{{Country: "USA"}},
		Keys:      []Key{{Number: 25, Keyword: "movies"}},
	})
	s.mustCreate(Group{
		Project:   s.eligibleProject(2, 5.0),
		Countries: []Country{{Country: "Brazil"}},
		Keys:      []Key{{Number: 99, Keyword: "movies"}},
	})

	usa := "USA"
	movies := "movies"
	ten := int64(10)

	best, err := s.store.BestMatch(s.ctx, Match{Now: s.now, Country: &usa, MinNumber: &ten, Keyword: &movies})
	s.Require().NoError(err)
	s.Equal(int64(1), best.ID, "the cheaper project is the only one satisfying all three filters")

	ninety := int64(90)
	_, err = s.store.BestMatch(s.ctx, Match{Now: s.now, Country: &usa, MinNumber: &ninety, Keyword: &movies})
	s.Require().ErrorIs(err, sentinel.ErrNotFound, "unsatisfiable combination must be not-found")
}

// TestConcurrentCreateSameID verifies that concurrent creation attempts with
// the same project id result in exactly one success.
func (s *MemoryStoreSuite) TestConcurrentCreateSameID() {
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.CreateGroup(s.ctx, Group{
				Project:   s.eligibleProject(1, 1.0),
				Countries: []Country{{Country: "USA"}},
			})
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())
	s.Len(s.store.CountryRows(1), 1)
}

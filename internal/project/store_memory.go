package project

import (
	"context"
	"sync"

	"projectdir/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded store used by unit tests and as the default
// store when no database is configured. Country and key rows are kept as
// slices per group id, mirroring the one-to-many relation.
type InMemory struct {
	mu        sync.RWMutex
	nextRowID int64
	projects  map[int64]Project
	countries map[int64][]Country
	keys      map[int64][]Key
}

func NewInMemory() *InMemory {
	return &InMemory{
		projects:  make(map[int64]Project),
		countries: make(map[int64][]Country),
		keys:      make(map[int64][]Key),
	}
}

func (s *InMemory) CreateGroup(_ context.Context, group Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := group.Project.ID
	if _, exists := s.projects[id]; exists {
		return sentinel.ErrConflict
	}

	s.projects[id] = group.Project
	for _, c := range group.Countries {
		s.nextRowID++
		c.ID = s.nextRowID
		c.GroupID = id
		s.countries[id] = append(s.countries[id], c)
	}
	for _, k := range group.Keys {
		s.nextRowID++
		k.ID = s.nextRowID
		k.GroupID = id
		s.keys[id] = append(s.keys[id], k)
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) BestMatch(_ context.Context, match Match) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Project
	for id, p := range s.projects {
		if !p.Eligible(match.Now) {
			continue
		}
		if match.Country != nil && !s.hasCountry(id, *match.Country) {
			continue
		}
		if match.MinNumber != nil && !s.hasNumberAtLeast(id, *match.MinNumber) {
			continue
		}
		if match.Keyword != nil && !s.hasKeyword(id, *match.Keyword) {
			continue
		}
		if best == nil || p.Cost > best.Cost || (p.Cost == best.Cost && p.ID < best.ID) {
			candidate := p
			best = &candidate
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return best, nil
}

func (s *InMemory) hasCountry(groupID int64, country string) bool {
	for _, c := range s.countries[groupID] {
		if c.Country == country {
			return true
		}
	}
	return false
}

func (s *InMemory) hasNumberAtLeast(groupID, number int64) bool {
	for _, k := range s.keys[groupID] {
		if k.Number >= number {
			return true
		}
	}
	return false
}

func (s *InMemory) hasKeyword(groupID int64, keyword string) bool {
	for _, k := range s.keys[groupID] {
		if k.Keyword == keyword {
			return true
		}
	}
	return false
}

// CountryRows returns a copy of the country rows for a group id. Test helper.
func (s *InMemory) CountryRows(groupID int64) []Country {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Country{}, s.countries[groupID]...)
}

// KeyRows returns a copy of the key rows for a group id. Test helper.
func (s *InMemory) KeyRows(groupID int64) []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Key{}, s.keys[groupID]...)
}

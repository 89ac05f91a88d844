package models

import (
	"encoding/json"
	"sort"
)

// FavoriteSet is the set of favorite product ids of one user.
type FavoriteSet map[string]struct{}

func NewFavoriteSet(ids ...string) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether the set changed.
func (s FavoriteSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether the set changed.
func (s FavoriteSet) Remove(id string) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

func (s FavoriteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s FavoriteSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s FavoriteSet) Clone() FavoriteSet {
	return NewFavoriteSet(s.IDs()...)
}

// MarshalJSON writes the set as a sorted JSON array.
func (s FavoriteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON reads a JSON array, collapsing duplicates.
func (s *FavoriteSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewFavoriteSet(ids...)
	return nil
}

package schedule

import (
	"sort"

	"officescheduler/models"
)

// Selection is an immutable set of picked Optional blocks. The zero value is
// the empty set.
type Selection struct {
	keys map[models.BlockKey]struct{}
}

// NewSelection builds a set from keys, ignoring repeats.
func NewSelection(keys ...models.BlockKey) Selection {
	s := Selection{keys: make(map[models.BlockKey]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Selection) Has(key models.BlockKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Len is the number of picked blocks.
func (s Selection) Len() int {
	return len(s.keys)
}

// Equal reports whether both sets hold the same keys.
func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	for k := range s.keys {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Keys lists the members in grid order: day first, then start hour.
func (s Selection) Keys() []models.BlockKey {
	out := make([]models.BlockKey, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := models.DayIndex(out[i].Day), models.DayIndex(out[j].Day)
		if di != dj {
			return di < dj
		}
		return out[i].StartHour < out[j].StartHour
	})
	return out
}

func (s Selection) with(key models.BlockKey) Selection {
	next := make(map[models.BlockKey]struct{}, len(s.keys)+1)
	for k := range s.keys {
		next[k] = struct{}{}
	}
	next[key] = struct{}{}
	return Selection{keys: next}
}

func (s Selection) without(key models.BlockKey) Selection {
	next := make(map[models.BlockKey]struct{}, len(s.keys))
	for k := range s.keys {
		if k != key {
			next[k] = struct{}{}
		}
	}
	return Selection{keys: next}
}

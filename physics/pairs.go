package physics

import (
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/oliverbestmann/rigid/internal/set"
	"github.com/oliverbestmann/rigid/scene"
)

type pairRecord struct {
	owner    scene.EntityId
	partners set.Set[scene.EntityId]
}

// pairTracker remembers which entities touched in the previous frames.
// A partner is part of the persistent record of an owner for as long as
// a start or enter event was raised and the matching end or leave was not.
type pairTracker struct {
	persistent *intmap.Map[scene.EntityId, *pairRecord]
	frame      *intmap.Map[scene.EntityId, *pairRecord]

	// records currently referenced by the frame map
	framed []*pairRecord

	free   []*pairRecord
	owners []scene.EntityId
}

func newPairTracker() pairTracker {
	return pairTracker{
		persistent: intmap.New[scene.EntityId, *pairRecord](64),
		frame:      intmap.New[scene.EntityId, *pairRecord](64),
	}
}

func (t *pairTracker) alloc(owner scene.EntityId) *pairRecord {
	if n := len(t.free); n > 0 {
		record := t.free[n-1]
		t.free = t.free[:n-1]
		record.owner = owner
		return record
	}

	return &pairRecord{owner: owner}
}

func (t *pairTracker) release(record *pairRecord) {
	record.partners.Clear()
	t.free = append(t.free, record)
}

// record stores the pair for this frame and reports whether
// it was not yet known from previous frames.
func (t *pairTracker) record(owner, other scene.EntityId) bool {
	current, ok := t.frame.Get(owner)
	if !ok {
		current = t.alloc(owner)
		t.frame.Put(owner, current)
		t.framed = append(t.framed, current)
	}

	current.partners.Insert(other)

	persistent, ok := t.persistent.Get(owner)
	if !ok {
		persistent = t.alloc(owner)
		t.persistent.Put(owner, persistent)
	}

	return persistent.partners.Insert(other)
}

// touching reports whether the pair is currently tracked as touching.
func (t *pairTracker) touching(owner, other scene.EntityId) bool {
	persistent, ok := t.persistent.Get(owner)
	return ok && persistent.partners.Has(other)
}

func (t *pairTracker) len() int {
	return t.persistent.Len()
}

// sweep calls ended for every persistent pair that was not recorded in this frame,
// removes those pairs and resets the frame for the next step.
func (t *pairTracker) sweep(ended func(owner, other scene.EntityId)) {
	t.owners = t.owners[:0]
	t.persistent.ForEach(func(owner scene.EntityId, _ *pairRecord) bool {
		t.owners = append(t.owners, owner)
		return true
	})

	slices.Sort(t.owners)

	for _, owner := range t.owners {
		persistent, _ := t.persistent.Get(owner)
		current, _ := t.frame.Get(owner)

		persistent.partners.Retain(func(other scene.EntityId) bool {
			if current != nil && current.partners.Has(other) {
				return true
			}

			ended(owner, other)
			return false
		})

		if persistent.partners.Len() == 0 {
			t.persistent.Del(owner)
			t.release(persistent)
		}
	}

	for _, record := range t.framed {
		t.release(record)
	}

	clear(t.framed)
	t.framed = t.framed[:0]
	t.frame.Clear()
}

package physics

import (
	"github.com/kamstrup/intmap"
	"github.com/oliverbestmann/rigid/scene"
)

// flagEntry memoizes the listener flags of an entity for a single frame.
type flagEntry struct {
	flags EventFlags
	kind  BodyKind

	// frame is the frame the entry was last refreshed in.
	// Zero means never refreshed.
	frame uint64
}

type flagCache struct {
	entries *intmap.Map[scene.EntityId, *flagEntry]
}

func newFlagCache() flagCache {
	return flagCache{entries: intmap.New[scene.EntityId, *flagEntry](64)}
}

func (c *flagCache) insert(entityId scene.EntityId, kind BodyKind) {
	c.entries.Put(entityId, &flagEntry{kind: kind})
}

func (c *flagCache) remove(entityId scene.EntityId) {
	c.entries.Del(entityId)
}

// invalidate marks every entry as stale.
func (c *flagCache) invalidate() {
	c.entries.ForEach(func(_ scene.EntityId, entry *flagEntry) bool {
		entry.frame = 0
		return true
	})
}

// lookup returns the entry of the entity, refreshing it at most once per frame.
func (e *Engine) lookup(entityId scene.EntityId) (*flagEntry, bool) {
	entry, ok := e.cache.entries.Get(entityId)
	if !ok {
		return nil, false
	}

	if entry.frame == 0 || entry.frame != e.frame {
		e.refresh(entityId, entry)
	}

	return entry, true
}

func (e *Engine) refresh(entityId scene.EntityId, entry *flagEntry) {
	var flags EventFlags

	for _, flag := range EntityEventFlags {
		if e.host.CountListeners(entityId, flag) > 0 {
			flags |= flag
		}
	}

	if e.hasGlobalContact {
		flags |= FlagGlobalContact
	}

	if body, ok := e.bodies.Get(entityId); ok {
		entry.kind = body.Kind
	}

	entry.flags = flags
	entry.frame = e.frame
}

// Flags returns the event flags of the entity for the current frame.
func (e *Engine) Flags(entityId scene.EntityId) EventFlags {
	entry, ok := e.lookup(entityId)
	if !ok {
		return 0
	}

	return entry.flags
}

func (e *Engine) advanceFrame() {
	if e.frame >= e.config.FrameCounterLimit {
		e.frame = 1
		e.cache.invalidate()
		return
	}

	e.frame += 1
}

// Frame returns the current value of the frame counter.
func (e *Engine) Frame() uint64 {
	return e.frame
}

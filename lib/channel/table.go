package channel

import (
	"errors"
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"gfx.cafe/gfx/protocolcontrol/lib/util/maps"
)

var (
	ErrNoID     = errors.New("profile has no principal id")
	ErrIDInUse  = errors.New("principal id is held by another live profile")
	ErrDisabled = errors.New("channel table is disabled")
)

// Table maps principal ids to the profiles of their connections. It only holds weak references: once nothing
// else references a profile its entry disappears.
type Table struct {
	profiles maps.RWLocked[uuid.UUID, weak.Pointer[Profile]]
	enabled  atomic.Bool
}

// Add registers profile under its principal id. An entry whose profile has been collected is replaced.
func (T *Table) Add(profile *Profile) error {
	if !T.enabled.Load() {
		return ErrDisabled
	}
	id, ok := profile.ID()
	if !ok {
		return ErrNoID
	}

	ptr := weak.Make(profile)
	var existing bool
	stored := T.profiles.StoreIf(id, ptr, func(current weak.Pointer[Profile], ok bool) bool {
		existing = ok && current == ptr
		return !ok || existing || current.Value() == nil
	})
	if !stored {
		return ErrIDInUse
	}
	if !existing {
		runtime.AddCleanup(profile, T.collect, id)
	}
	return nil
}

func (T *Table) collect(id uuid.UUID) {
	T.profiles.DeleteIf(id, func(ptr weak.Pointer[Profile]) bool {
		return ptr.Value() == nil
	})
}

// Remove drops the entry for id.
func (T *Table) Remove(id uuid.UUID) {
	T.profiles.Delete(id)
}

// RemoveProfile drops profile's entry only if it is still the one registered under its id.
func (T *Table) RemoveProfile(profile *Profile) bool {
	id, ok := profile.ID()
	if !ok {
		return false
	}
	return T.profiles.DeleteIf(id, func(ptr weak.Pointer[Profile]) bool {
		return ptr.Value() == profile
	})
}

func (T *Table) Profile(id uuid.UUID) (*Profile, bool) {
	ptr, ok := T.profiles.Load(id)
	if !ok {
		return nil, false
	}
	profile := ptr.Value()
	return profile, profile != nil
}

// Range calls fn for every live profile.
func (T *Table) Range(fn func(*Profile) bool) {
	T.profiles.Range(func(_ uuid.UUID, ptr weak.Pointer[Profile]) bool {
		if profile := ptr.Value(); profile != nil {
			return fn(profile)
		}
		return true
	})
}

// Len returns the number of live profiles.
func (T *Table) Len() int {
	var n int
	T.Range(func(*Profile) bool {
		n++
		return true
	})
	return n
}

func (T *Table) Enable() {
	T.profiles.Clear()
	T.enabled.Store(true)
}

func (T *Table) Disable() {
	T.enabled.Store(false)
	T.profiles.Clear()
}

func (T *Table) Enabled() bool {
	return T.enabled.Load()
}

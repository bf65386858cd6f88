package core

import (
	"slices"
	"time"

	"github.com/dkeye/coderoom/internal/domain"
)

// Room is the in-memory state of one collaboration room: the roster in join
// order, the edit lock and the last code snapshot.
// It is not safe for concurrent use; the orchestrator serializes access.
type Room struct {
	id       domain.RoomID
	members  []domain.ConnID
	lock     EditLock
	snapshot *string
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{id: id}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) Len() int { return len(r.members) }

func (r *Room) Has(cid domain.ConnID) bool {
	return slices.Contains(r.members, cid)
}

// Members returns a copy of the roster in join order.
func (r *Room) Members() []domain.ConnID {
	return slices.Clone(r.members)
}

// Others returns the roster without cid.
func (r *Room) Others(cid domain.ConnID) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(r.members))
	for _, m := range r.members {
		if m != cid {
			out = append(out, m)
		}
	}
	return out
}

// Add appends cid to the roster. It reports false when cid is already a member.
func (r *Room) Add(cid domain.ConnID) bool {
	if r.Has(cid) {
		return false
	}
	r.members = append(r.members, cid)
	return true
}

// Remove drops cid from the roster and, if cid held the edit lock, unlocks it
// in the same step so the holder is always a member.
func (r *Room) Remove(cid domain.ConnID) (removed, lockReleased bool) {
	i := slices.Index(r.members, cid)
	if i < 0 {
		return false, false
	}
	r.members = slices.Delete(r.members, i, i+1)
	return true, r.lock.Release(cid)
}

// AcquireLock applies request-lock for cid. Only members may hold the lock;
// a non-member is denied with the current holder.
func (r *Room) AcquireLock(cid domain.ConnID, now time.Time) (bool, domain.ConnID) {
	if !r.Has(cid) {
		holder, _ := r.lock.Holder()
		return false, holder
	}
	return r.lock.Acquire(cid, now)
}

func (r *Room) ReleaseLock(cid domain.ConnID) bool { return r.lock.Release(cid) }

func (r *Room) TouchLock(cid domain.ConnID, now time.Time) { r.lock.Touch(cid, now) }

func (r *Room) LockHolder() (domain.ConnID, bool) { return r.lock.Holder() }

func (r *Room) LockIdleFor(now time.Time) time.Duration { return r.lock.IdleFor(now) }

// LockedSince reports when the current holder acquired the lock.
func (r *Room) LockedSince() (time.Time, bool) {
	if _, ok := r.lock.Holder(); !ok {
		return time.Time{}, false
	}
	return r.lock.AcquiredAt(), true
}

// ForceUnlock clears the lock regardless of holder and returns who held it.
func (r *Room) ForceUnlock() (domain.ConnID, bool) {
	holder, ok := r.lock.Holder()
	if ok {
		r.lock.Release(holder)
	}
	return holder, ok
}

// SetSnapshot overwrites the code snapshot unconditionally.
func (r *Room) SetSnapshot(code string) { r.snapshot = &code }

func (r *Room) Snapshot() (string, bool) {
	if r.snapshot == nil {
		return "", false
	}
	return *r.snapshot, true
}

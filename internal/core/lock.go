package core

import (
	"time"

	"github.com/dkeye/coderoom/internal/domain"
)

// EditLock is the advisory single-holder edit token of a room.
// The zero value is unlocked.
type EditLock struct {
	holder     domain.ConnID
	acquiredAt time.Time
	touchedAt  time.Time
}

func (l *EditLock) Holder() (domain.ConnID, bool) {
	return l.holder, l.holder != ""
}

func (l *EditLock) HeldBy(cid domain.ConnID) bool {
	return cid != "" && l.holder == cid
}

// Acquire grants the lock to cid when it is free or already held by cid.
// Otherwise it reports the current holder and leaves the state unchanged.
func (l *EditLock) Acquire(cid domain.ConnID, now time.Time) (bool, domain.ConnID) {
	switch l.holder {
	case "":
		l.holder = cid
		l.acquiredAt = now
		l.touchedAt = now
		return true, cid
	case cid:
		l.touchedAt = now
		return true, cid
	default:
		return false, l.holder
	}
}

// Release unlocks only when cid is the holder.
func (l *EditLock) Release(cid domain.ConnID) bool {
	if !l.HeldBy(cid) {
		return false
	}
	*l = EditLock{}
	return true
}

// Touch records holder activity for the idle janitor.
func (l *EditLock) Touch(cid domain.ConnID, now time.Time) {
	if l.HeldBy(cid) {
		l.touchedAt = now
	}
}

// IdleFor is zero for an unlocked lock.
func (l *EditLock) IdleFor(now time.Time) time.Duration {
	if l.holder == "" {
		return 0
	}
	return now.Sub(l.touchedAt)
}

func (l *EditLock) AcquiredAt() time.Time { return l.acquiredAt }

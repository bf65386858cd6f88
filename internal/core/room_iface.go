package core

import (
	"time"

	"github.com/dkeye/coderoom/internal/domain"
)

// RoomInfo is the read-only view served by /api/rooms.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	Locked      bool          `json:"locked"`
	LockedSince *time.Time    `json:"locked_since,omitempty"`
}

// RoomManager owns the room table. Rooms are created on first join and
// dropped once empty.
type RoomManager interface {
	GetOrCreate(id domain.RoomID) *Room
	Get(id domain.RoomID) (*Room, bool)
	// Each visits every room; callers must not add or remove rooms from fn.
	Each(fn func(*Room))
	List() []RoomInfo
	Len() int
	StopRoom(id domain.RoomID)
}

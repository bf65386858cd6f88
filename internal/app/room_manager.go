package app

import (
	"slices"
	"strings"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type RoomManagerImpl struct {
	rooms map[domain.RoomID]*core.Room
}

// NewRoomManager returns an unsynchronized room table; the orchestrator
// lock guards it.
func NewRoomManager() core.RoomManager {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID]*core.Room)}
}

func (f *RoomManagerImpl) GetOrCreate(id domain.RoomID) *core.Room {
	if room, ok := f.rooms[id]; ok {
		return room
	}
	room := core.NewRoom(id)
	f.rooms[id] = room
	log.Debug().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return room
}

func (f *RoomManagerImpl) Get(id domain.RoomID) (*core.Room, bool) {
	room, ok := f.rooms[id]
	return room, ok
}

func (f *RoomManagerImpl) Each(fn func(*core.Room)) {
	for _, r := range f.rooms {
		fn(r)
	}
}

func (f *RoomManagerImpl) Len() int { return len(f.rooms) }

func (f *RoomManagerImpl) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		info := core.RoomInfo{ID: id, MemberCount: r.Len()}
		if since, locked := r.LockedSince(); locked {
			info.Locked = true
			info.LockedSince = &since
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

func (f *RoomManagerImpl) StopRoom(id domain.RoomID) {
	if _, ok := f.rooms[id]; !ok {
		return
	}
	delete(f.rooms, id)
	log.Debug().Str("module", "app.rooms").Str("room", string(id)).Msg("room dropped")
}

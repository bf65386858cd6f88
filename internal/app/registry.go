package app

import (
	"context"
	"slices"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry holds every live connection and the presence set
// (user identity -> connection). It is not safe for concurrent use: the
// orchestrator serializes all access behind its own lock.
type Registry struct {
	sessions map[domain.ConnID]*sessionEntry
	online   map[domain.UserID]domain.ConnID
	// order keeps the presence set in first-registration order.
	order []domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]*sessionEntry),
		online:   make(map[domain.UserID]domain.ConnID),
	}
}

func (r *Registry) Bind(sid domain.ConnID, sess core.MemberSession, cancel context.CancelFunc) {
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Debug().Str("module", "app.registry").Str("conn", string(sid)).Msg("bound session")
}

func (r *Registry) GetSession(sid domain.ConnID) (core.MemberSession, bool) {
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) Unbind(sid domain.ConnID) {
	delete(r.sessions, sid)
	log.Debug().Str("module", "app.registry").Str("conn", string(sid)).Msg("unbind session")
}

func (r *Registry) Len() int { return len(r.sessions) }

type regSnap struct {
	SID     domain.ConnID
	Session core.MemberSession
}

// All returns every live connection, registered or not.
func (r *Registry) All() []regSnap {
	out := make([]regSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		out = append(out, regSnap{SID: sid, Session: e.Session})
	}
	return out
}

// Register binds uid to sid, overwriting a previous connection for uid.
// If sid was registered under another identity that still points at it,
// that binding is dropped. Unknown sid reports false.
func (r *Registry) Register(sid domain.ConnID, uid domain.UserID) bool {
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	meta := e.Session.Meta()
	if prev := meta.User; prev != "" && prev != uid && r.online[prev] == sid {
		r.dropOnline(prev)
	}
	if _, seen := r.online[uid]; !seen {
		r.order = append(r.order, uid)
	}
	r.online[uid] = sid
	meta.User = uid
	log.Info().Str("module", "app.registry").Str("conn", string(sid)).Str("user", string(uid)).Msg("registered user")
	return true
}

// Unregister removes sid's identity from the presence set when sid is still
// the connection bound to it. It reports whether sid had an identity at all.
func (r *Registry) Unregister(sid domain.ConnID) bool {
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	meta := e.Session.Meta()
	if !meta.Registered() {
		return false
	}
	uid := meta.User
	if r.online[uid] == sid {
		r.dropOnline(uid)
		log.Info().Str("module", "app.registry").Str("conn", string(sid)).Str("user", string(uid)).Msg("unregistered user")
	}
	return true
}

func (r *Registry) dropOnline(uid domain.UserID) {
	delete(r.online, uid)
	if i := slices.Index(r.order, uid); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// OnlineUsers lists the presence set in first-registration order.
func (r *Registry) OnlineUsers() []domain.UserID {
	return slices.Clone(r.order)
}

func (r *Registry) OnlineLen() int { return len(r.online) }

func (r *Registry) ConnOf(uid domain.UserID) (domain.ConnID, bool) {
	sid, ok := r.online[uid]
	return sid, ok
}

func (r *Registry) UserOf(sid domain.ConnID) (domain.UserID, bool) {
	e, ok := r.sessions[sid]
	if !ok || !e.Session.Meta().Registered() {
		return "", false
	}
	return e.Session.Meta().User, true
}

func (r *Registry) RoomOf(sid domain.ConnID) (domain.RoomID, bool) {
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

func (r *Registry) UpdateRoom(sid domain.ConnID, room domain.RoomID) bool {
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomID = room
	log.Debug().Str("module", "app.registry").Str("conn", string(sid)).Str("room", string(room)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(sid domain.ConnID) {
	if e, ok := r.sessions[sid]; ok {
		e.RoomID = ""
	}
}

// Cancel stops sid's transport pumps; the disconnect path does the cleanup.
func (r *Registry) Cancel(sid domain.ConnID) bool {
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(sid)).Msg("canceled session")
	return true
}

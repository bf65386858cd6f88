package core

import "github.com/dkeye/coderoom/internal/domain"

// MemberSession pairs a connection's metadata with its outbound transport.
// The registry stores one per live connection.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

type session struct {
	meta *domain.Member
	out  SignalConnection
}

func NewMemberSession(meta *domain.Member, out SignalConnection) MemberSession {
	return &session{meta: meta, out: out}
}

func (s *session) Meta() *domain.Member     { return s.meta }
func (s *session) Signal() SignalConnection { return s.out }

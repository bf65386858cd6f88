package app

import (
	"errors"

	"github.com/dkeye/coderoom/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send failed.
type Policy interface {
	OnBackPressure(member core.MemberSession, err error) BackpressureAction
}

// SimplePolicy kicks members whose send buffer is full. A closed connection
// is already on its way out, so the frame is just dropped.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(member core.MemberSession, err error) BackpressureAction {
	if errors.Is(err, core.ErrBackpressure) {
		return KickMember
	}
	return DropFrame
}

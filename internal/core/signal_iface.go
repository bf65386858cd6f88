package core

import "errors"

// Frame is one encoded outbound message.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

//go:generate mockgen -source=signal_iface.go -destination=mock_signal.go -package=core

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: the orchestrator calls it while holding its lock.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

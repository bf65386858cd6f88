package app

import (
	"testing"
	"time"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomManagerLifecycle(t *testing.T) {
	m := NewRoomManager()

	_, ok := m.Get("r1")
	assert.False(t, ok)

	r1 := m.GetOrCreate("r1")
	assert.Same(t, r1, m.GetOrCreate("r1"))
	got, ok := m.Get("r1")
	require.True(t, ok)
	assert.Same(t, r1, got)

	t0 := time.Unix(1_700_000_000, 0)
	r1.Add("a")
	r1.AcquireLock("a", t0)
	m.GetOrCreate("r0")

	assert.Equal(t, []core.RoomInfo{
		{ID: "r0", MemberCount: 0},
		{ID: "r1", MemberCount: 1, Locked: true, LockedSince: &t0},
	}, m.List())
	assert.Equal(t, 2, m.Len())

	visited := 0
	m.Each(func(*core.Room) { visited++ })
	assert.Equal(t, 2, visited)

	m.StopRoom("r1")
	m.StopRoom("r1")
	_, ok = m.Get("r1")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

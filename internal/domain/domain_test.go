package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    UserID
		wantErr error
	}{
		{name: "plain", raw: "64f1c2", want: "64f1c2"},
		{name: "trimmed", raw: "  u1 ", want: "u1"},
		{name: "empty", raw: "", wantErr: ErrIDEmpty},
		{name: "blank", raw: "   ", wantErr: ErrIDEmpty},
		{name: "too long", raw: strings.Repeat("x", MaxUserIDLen+1), wantErr: ErrIDTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUserID(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoomID(t *testing.T) {
	id, err := ParseRoomID("r1")
	require.NoError(t, err)
	assert.Equal(t, RoomID("r1"), id)

	_, err = ParseRoomID(strings.Repeat("r", MaxRoomIDLen+1))
	assert.ErrorIs(t, err, ErrIDTooLong)
}

func TestNewConnIDUnique(t *testing.T) {
	a, b := NewConnID(), NewConnID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestMemberRegistered(t *testing.T) {
	m := NewMember(NewConnID(), "tok")
	assert.False(t, m.Registered())
	m.User = "u1"
	assert.True(t, m.Registered())
}

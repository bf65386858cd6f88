package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	env, err := Decode([]byte(`{"type":"join_room","data":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, JoinRoom, env.Type)

	room, err := String(env.Data)
	require.NoError(t, err)
	assert.Equal(t, "r1", room)

	_, err = Decode([]byte(`{"data":"r1"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestStringRejectsNonString(t *testing.T) {
	_, err := String(json.RawMessage(`{"roomId":"r1"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = String(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeOmitsNilData(t *testing.T) {
	b, err := Encode(LockGranted, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"lock-granted"}`, string(b))

	b, err = Encode(LockUpdate, LockUpdateOut{Locked: false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"lock-update","data":{"locked":false}}`, string(b))
}

func TestChatPayloadRoundTripsVerbatim(t *testing.T) {
	var in ChatIn
	require.NoError(t, Into(json.RawMessage(`{"roomId":"r1","message":"hi","sender":{"_id":"u1","username":"ann"}}`), &in))
	b, err := Encode(ReceiveMessage, ChatOut{Message: in.Message, Sender: in.Sender})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"receive_message","data":{"message":"hi","sender":{"_id":"u1","username":"ann"}}}`, string(b))
}

func TestPresent(t *testing.T) {
	assert.False(t, Present(nil))
	assert.False(t, Present(json.RawMessage(`null`)))
	assert.True(t, Present(json.RawMessage(`0`)))
}

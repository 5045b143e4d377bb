package commandv1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBytes(t *testing.T) {
	raw, err := ToBytes(CommandTypeEnter, EnterPayload{
		ParticipantID: "alice",
		AssetName:     "A",
		IsBid:         true,
		Price:         5,
		Volume:        2,
	})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, CommandTypeEnter, env.Type)

	var payload EnterPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "alice", payload.ParticipantID)
	assert.Equal(t, int64(5), payload.Price)
	assert.True(t, payload.IsBid)
}

func TestToBytes_AcceptImmediate(t *testing.T) {
	raw, err := ToBytes(CommandTypeAcceptImmediate, AcceptPayload{
		ParticipantID: "bob",
		AssetName:     "A",
		OrderID:       "o1",
		Volume:        1,
	})
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"type":"accept_immediate"`)
	assert.Contains(t, string(raw), `"order_id":"o1"`)
}

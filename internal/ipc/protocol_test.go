package ipc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glidewm/glide/internal/manager"
)

func TestRequestRoundTrip(t *testing.T) {
	payload, err := json.Marshal(LayoutPayload{
		Command: manager.Command{Op: manager.OpResize, Dir: "right", Px: 40},
	})
	require.NoError(t, err)

	req := Request{Command: CommandLayout, Payload: payload}
	data, err := json.Marshal(&req)
	require.NoError(t, err)

	parsed, err := ParseRequest(data)
	require.NoError(t, err)
	assert.Equal(t, CommandLayout, parsed.Command)

	var got LayoutPayload
	require.NoError(t, json.Unmarshal(parsed.Payload, &got))
	assert.Equal(t, manager.OpResize, got.Command.Op)
	assert.Equal(t, 40, got.Command.Px)
}

func TestResponseHelpers(t *testing.T) {
	resp, err := NewOKResponse(StatusData{DaemonRunning: true, WindowCount: 3})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)

	var status StatusData
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, 3, status.WindowCount)

	errResp := NewErrorResponse("boom")
	assert.Equal(t, "ERROR", errResp.Status)
	assert.Equal(t, "boom", errResp.Error)
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	_, err := ParseRequest([]byte("not json"))
	assert.Error(t, err)
}

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiie/orbit/errors"
	"github.com/sophiie/orbit/pkg/workspace"
)

func TestParsePatchFrame(t *testing.T) {
	raw := []byte(`{
		"type": "patch",
		"operations": [
			{"op": "add", "component": {"id": "c1", "type": "task", "title": "Call Henderson"}, "index": 0},
			{"op": "remove", "componentId": "c2"},
			{"op": "update", "componentId": "c3", "changes": {"completed": true}},
			{"op": "reorder", "componentId": "c1", "newIndex": 2}
		]
	}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)

	patch, ok := frame.(*PatchFrame)
	require.True(t, ok, "expected *PatchFrame, got %T", frame)
	require.Len(t, patch.Operations, 4)

	add := patch.Operations[0]
	assert.Equal(t, workspace.OpAdd, add.Op)
	require.NotNil(t, add.Component)
	assert.Equal(t, "c1", add.Component.ID)
	require.NotNil(t, add.Index)
	assert.Equal(t, 0, *add.Index)

	assert.Equal(t, "c2", patch.Operations[1].ComponentID)
	assert.Equal(t, true, patch.Operations[2].Changes["completed"])
	assert.Equal(t, 2, patch.Operations[3].NewIndex)
}

func TestParseLeadFrames(t *testing.T) {
	frame, err := ParseFrame([]byte(`{"type":"new_lead","lead":{"id":"L1","customerName":"Dana","status":"new","quoteTotal":180.5}}`))
	require.NoError(t, err)
	newLead := frame.(*NewLeadFrame)
	assert.Equal(t, "L1", newLead.Lead.ID)
	require.NotNil(t, newLead.Lead.QuoteTotal)
	assert.Equal(t, 180.5, *newLead.Lead.QuoteTotal)

	frame, err = ParseFrame([]byte(`{"type":"lead_update","lead":{"id":"L1","status":"confirmed"}}`))
	require.NoError(t, err)
	update := frame.(*LeadUpdateFrame)
	assert.Equal(t, "confirmed", update.Lead.Status)
	assert.Nil(t, update.Lead.QuoteTotal)

	frame, err = ParseFrame([]byte(`{"type":"lead_decided","lead_id":"L1","decision":"approve","decided_by":"user-42"}`))
	require.NoError(t, err)
	decided := frame.(*LeadDecidedFrame)
	assert.Equal(t, "approve", decided.Decision)
}

func TestParseCallStatus(t *testing.T) {
	frame, err := ParseFrame([]byte(`{"type":"call_status","status":"started","caller":"+61400000000"}`))
	require.NoError(t, err)
	call := frame.(*CallStatusFrame)
	assert.Equal(t, CallStarted, call.Status)
	assert.Equal(t, "+61400000000", call.Caller)
}

func TestParseStatusAndConnected(t *testing.T) {
	frame, err := ParseFrame([]byte(`{"type":"status","status":"thinking","message":"Processing your input..."}`))
	require.NoError(t, err)
	status := frame.(*StatusFrame)
	assert.Equal(t, ServerStatusThinking, status.Status)

	frame, err = ParseFrame([]byte(`{"type":"connected","tradie_id":"demo-tradie","active_connections":3}`))
	require.NoError(t, err)
	connected := frame.(*ConnectedFrame)
	assert.Equal(t, 3, connected.ActiveConnections)
}

func TestParseFrameErrors(t *testing.T) {
	_, err := ParseFrame([]byte(`{not json`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFrameInvalid, errors.GetCode(err))

	_, err = ParseFrame([]byte(`{"type":"telemetry"}`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFrameUnknownType, errors.GetCode(err))
}

func TestOutboundFrames(t *testing.T) {
	data, err := json.Marshal(NewUtterance("book Henderson for Tuesday", SourceVoice))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"utterance"`)
	assert.Contains(t, string(data), `"source":"voice"`)
	assert.Contains(t, string(data), `"timestamp"`)

	data, err = json.Marshal(NewAction("complete", "c1", map[string]interface{}{"completed": true}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"componentId":"c1"`)

	data, err = json.Marshal(NewSyncRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"sync_request"}`, string(data))

	data, err = json.Marshal(NewDecide("L1", "approve"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"decide","lead_id":"L1","decision":"approve"}`, string(data))
}

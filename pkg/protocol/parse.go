package protocol

import (
	"encoding/json"

	"github.com/sophiie/orbit/errors"
)

// envelope is the minimal shape decoded to discover the frame type.
type envelope struct {
	Type string `json:"type"`
}

// ParseFrame decodes a raw inbound payload into its concrete frame
// type. Malformed JSON yields FRAME_INVALID and an unrecognized type
// discriminator yields FRAME_UNKNOWN_TYPE; callers are expected to log
// and drop either case rather than propagate it.
func ParseFrame(data []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.FrameInvalid(err)
	}

	var frame Frame
	switch env.Type {
	case TypeStatus:
		frame = &StatusFrame{}
	case TypeIntentParsed:
		frame = &IntentParsedFrame{}
	case TypePatch:
		frame = &PatchFrame{}
	case TypeNewLead:
		frame = &NewLeadFrame{}
	case TypeLeadUpdate:
		frame = &LeadUpdateFrame{}
	case TypeLeadDecided:
		frame = &LeadDecidedFrame{}
	case TypeCallStatus:
		frame = &CallStatusFrame{}
	case TypeConnected:
		frame = &ConnectedFrame{}
	case TypePong:
		frame = &PongFrame{}
	default:
		return nil, errors.FrameUnknownType(env.Type)
	}

	if err := json.Unmarshal(data, frame); err != nil {
		return nil, errors.FrameInvalid(err)
	}
	return frame, nil
}

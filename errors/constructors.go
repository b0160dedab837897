package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *OrbitError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *OrbitError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// ChannelClosed creates an error for a send attempted on a closed channel
func ChannelClosed(channel string) *OrbitError {
	return New(ErrCodeChannelClosed, fmt.Sprintf("channel %s is not open", channel)).
		WithDetail("channel", channel)
}

// ChannelDial wraps a failed WebSocket dial
func ChannelDial(channel string, err error) *OrbitError {
	return Wrap(err, ErrCodeChannelDial, fmt.Sprintf("failed to connect channel %s", channel)).
		WithDetail("channel", channel)
}

// FrameInvalid wraps a JSON decode failure at the frame boundary
func FrameInvalid(err error) *OrbitError {
	return Wrap(err, ErrCodeFrameInvalid, "malformed frame payload")
}

// FrameUnknownType creates an error for a frame with an unrecognized type discriminator
func FrameUnknownType(frameType string) *OrbitError {
	return New(ErrCodeFrameUnknownType, fmt.Sprintf("unknown frame type: %s", frameType)).
		WithDetail("type", frameType)
}

// CredentialMissing creates an error for operations that require a bearer token
func CredentialMissing() *OrbitError {
	return New(ErrCodeCredentialMissing, "no bearer credential available")
}

// SyncUnavailable wraps a failed lead-list hydration request
func SyncUnavailable(err error) *OrbitError {
	return Wrap(err, ErrCodeSyncUnavailable, "lead sync request failed")
}

package cli

import (
	"fmt"
	"os"

	"github.com/sophiie/orbit/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create an orbit.yml with a server.base_url.\n")
		return err

	case errors.ErrCodeCredentialMissing:
		fmt.Fprintf(os.Stderr, "❌ No credential configured. Set auth.token or auth.token_file in orbit.yml.\n")
		return err

	case errors.ErrCodeConfigValidation:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'orbit config validate' to see all problems.\n")
		return err

	case errors.ErrCodeChannelDial:
		if orbitErr, ok := err.(*errors.OrbitError); ok {
			fmt.Fprintf(os.Stderr, "❌ Could not reach the server on the %s channel\n", orbitErr.Details["channel"])
			fmt.Fprintf(os.Stderr, "Check server.base_url in orbit.yml and your network connection.\n")
		}
		return err

	case errors.ErrCodeSyncUnavailable:
		fmt.Fprintf(os.Stderr, "❌ Sync is unavailable: %v\n", err)
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if orbitErr, ok := err.(*errors.OrbitError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", orbitErr.ToJSON())
			}
		}
		return err
	}
}

// Package cmd implements the orbit CLI subcommands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sophiie/orbit/cli"
	"github.com/sophiie/orbit/config"
	"github.com/sophiie/orbit/errors"
	"github.com/sophiie/orbit/pkg/coordinator"
	"github.com/sophiie/orbit/pkg/credential"
)

// newCredential builds the credential provider from the auth section.
// An inline token wins over a token file.
func newCredential(cfg *config.Config) (credential.Provider, func(), error) {
	if cfg.Auth.Token != "" {
		return credential.Static(cfg.Auth.Token), func() {}, nil
	}
	if cfg.Auth.TokenFile != "" {
		provider, err := credential.NewFileProvider(cfg.Auth.TokenFile)
		if err != nil {
			return nil, nil, err
		}
		return provider, func() { provider.Close() }, nil
	}
	return nil, nil, errors.CredentialMissing()
}

// newCoordinator loads configuration and assembles a ready-to-start
// coordinator for the watch and dash commands. The returned cleanup
// releases the credential watcher.
func newCoordinator(cmd *cobra.Command) (*coordinator.Coordinator, func(), error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	cred, cleanup, err := newCredential(cfg)
	if err != nil {
		return nil, nil, err
	}

	coord, err := coordinator.New(coordinator.Options{
		Config:     cfg,
		Credential: cred,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return coord, cleanup, nil
}

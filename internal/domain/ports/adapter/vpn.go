package adapter

import "context"

// CredentialGenerator is the hex port for the OS-level VPN toolkit.
type CredentialGenerator interface {
	// Generate creates a client credential valid for durationDays. A
	// failed invocation returns domain.ErrGenerationFailed; no artifact
	// may be assumed to exist afterwards.
	Generate(ctx context.Context, clientName string, durationDays int) error

	// ArtifactPath is the deterministic on-disk location of the
	// credential file for clientName.
	ArtifactPath(clientName string) string

	// ServiceStatus returns a one-line health summary of the VPN
	// service.
	ServiceStatus(ctx context.Context) (string, error)
}

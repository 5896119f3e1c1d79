package vpn

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/infra/metrics"
)

var _ adapter.CredentialGenerator = (*PiVPNGenerator)(nil)

// PiVPNGenerator shells out to the pivpn CLI to issue OpenVPN client
// credentials. Invocations carry an explicit timeout; the toolkit
// itself has none.
type PiVPNGenerator struct {
	binary  string
	ovpnDir string
	timeout time.Duration
	log     *zerolog.Logger
}

func NewPiVPNGenerator(binary, ovpnDir string, timeout time.Duration, logger *zerolog.Logger) *PiVPNGenerator {
	genLog := logger.With().Str("component", "PiVPNGenerator").Logger()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PiVPNGenerator{binary: binary, ovpnDir: ovpnDir, timeout: timeout, log: &genLog}
}

// Generate runs `pivpn ovpn add nopass -n <client> -d <days>`.
func (g *PiVPNGenerator) Generate(ctx context.Context, clientName string, durationDays int) error {
	if clientName == "" || durationDays <= 0 {
		return domain.ErrInvalidArgument
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, g.binary, "ovpn", "add", "nopass", "-n", clientName, "-d", strconv.Itoa(durationDays))
	out, err := cmd.CombinedOutput()
	metrics.ObserveGeneratorSeconds(time.Since(start).Seconds())
	if err != nil {
		g.log.Error().Err(err).Str("client", clientName).Bytes("output", out).Msg("generator invocation failed")
		return fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return nil
}

func (g *PiVPNGenerator) ArtifactPath(clientName string) string {
	return filepath.Join(g.ovpnDir, clientName+".ovpn")
}

// ServiceStatus extracts the "Active:" line from systemctl output for
// the /status command.
func (g *PiVPNGenerator) ServiceStatus(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "systemctl", "status", "openvpn").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("query openvpn service: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "Active:") {
			return strings.TrimSpace(line), nil
		}
	}
	return "", fmt.Errorf("no Active line in status output: %w", domain.ErrNotFound)
}

package pdfix

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// LicenseStatus is the engine's account state as reported by the vendor CLI.
type LicenseStatus struct {
	Status struct {
		Authorized string `json:"authorized"`
	} `json:"status"`
	Raw json.RawMessage `json:"-"`
}

// Authorized reports whether the engine license is active
func (s LicenseStatus) Authorized() bool {
	return s.Status.Authorized == "true"
}

// License queries the engine's license state.
func (e *ExecEngine) License(ctx context.Context) (*LicenseStatus, error) {
	out, err := exec.CommandContext(ctx, e.binary, "license", "status", "--format", "json").Output()
	if err != nil {
		return nil, fmt.Errorf("license status query failed: %w", err)
	}

	var status LicenseStatus
	if err := json.Unmarshal(out, &status); err != nil {
		return nil, fmt.Errorf("cannot parse license status: %w", err)
	}
	status.Raw = json.RawMessage(out)
	return &status, nil
}

// Activate registers the engine with the vendor using the given key.
func (e *ExecEngine) Activate(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("license key cannot be empty")
	}
	if err := exec.CommandContext(ctx, e.binary, "license", "activate", key).Run(); err != nil {
		return fmt.Errorf("license activation failed: %w", err)
	}
	return nil
}

// Deactivate releases the engine's license seat.
func (e *ExecEngine) Deactivate(ctx context.Context) error {
	if err := exec.CommandContext(ctx, e.binary, "license", "deactivate").Run(); err != nil {
		return fmt.Errorf("license deactivation failed: %w", err)
	}
	return nil
}

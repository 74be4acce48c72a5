// Package recommend suggests a profile for the current host.
package recommend

import (
	"context"
	"log/slog"

	gohost "github.com/shirou/gopsutil/v4/host"
)

// virtualizationFn is swapped out in tests.
var virtualizationFn = gohost.VirtualizationWithContext

// Recommend returns the profile best suited to this host: virtual-guest when
// running inside a hypervisor, virtual-host when the host itself runs
// guests, balanced otherwise. Detection failures degrade to balanced rather
// than erroring; a recommendation is advisory.
func Recommend(ctx context.Context) string {
	system, role, err := virtualizationFn(ctx)
	if err != nil {
		slog.Debug("virtualization detection failed, recommending balanced", "error", err)
		return "balanced"
	}

	slog.Debug("virtualization detected", "system", system, "role", role)

	switch role {
	case "guest":
		return "virtual-guest"
	case "host":
		if system == "" {
			return "balanced"
		}
		return "virtual-host"
	default:
		return "balanced"
	}
}

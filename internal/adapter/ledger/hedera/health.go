package hedera

import "context"

// HealthCheck implements ports.HealthChecker against the mirror node.
type HealthCheck struct {
	mirror *MirrorClient
}

func NewHealthCheck(mirror *MirrorClient) *HealthCheck {
	return &HealthCheck{mirror: mirror}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.mirror.Ping(ctx)
}

func (h *HealthCheck) Name() string {
	return "hedera"
}

package stellar

import (
	"context"

	"github.com/stellar/go/clients/horizonclient"
)

// HealthCheck implements ports.HealthChecker against Horizon's root endpoint.
type HealthCheck struct {
	client *horizonclient.Client
}

func NewHealthCheck(client *horizonclient.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping ignores ctx; the Horizon client bounds the call with its own timeout.
func (h *HealthCheck) Ping(_ context.Context) error {
	_, err := h.client.Root()
	return err
}

func (h *HealthCheck) Name() string {
	return "stellar"
}

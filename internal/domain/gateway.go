package domain

import "fmt"

// GatewayReason classifies why a submission to the remote authority failed.
type GatewayReason string

const (
	GatewayReasonNetwork     GatewayReason = "network"
	GatewayReasonTimeout     GatewayReason = "timeout"
	GatewayReasonRemote      GatewayReason = "remote"
	GatewayReasonProtocol    GatewayReason = "protocol"
	GatewayReasonRejected    GatewayReason = "rejected"
	GatewayReasonUnavailable GatewayReason = "unavailable"
)

// GatewayError is the only error type returned by a gateway.
type GatewayError struct {
	Reason GatewayReason
	Detail string
}

func (e *GatewayError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("gateway error: %s", e.Reason)
	}
	return fmt.Sprintf("gateway error (%s): %s", e.Reason, e.Detail)
}

// NewGatewayError creates a GatewayError.
func NewGatewayError(reason GatewayReason, detail string) *GatewayError {
	return &GatewayError{Reason: reason, Detail: detail}
}

// GatewayMode tells which path the gateway uses for submissions.
type GatewayMode string

const (
	GatewayModeRemote     GatewayMode = "remote"
	GatewayModeSimulation GatewayMode = "simulation"
)

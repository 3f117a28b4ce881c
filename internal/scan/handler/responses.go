package handler

import (
	"github.com/google/uuid"

	"twigascan/internal/scan/history"
	"twigascan/internal/scan/providers"
)

// ProvidersResponse lists the provider registry.
type ProvidersResponse struct {
	Providers []providers.ProviderRecord `json:"providers"`
	Count     int                        `json:"count"`
}

// ActionResponse confirms a recorded user action.
type ActionResponse struct {
	ScanID     uuid.UUID          `json:"scan_id"`
	UserAction history.UserAction `json:"user_action"`
	Outcome    string             `json:"outcome,omitempty"`
}

// FromRecord builds the action confirmation.
func FromRecord(r *history.Record) ActionResponse {
	return ActionResponse{ScanID: r.ScanID, UserAction: r.UserAction, Outcome: r.Outcome}
}

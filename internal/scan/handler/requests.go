package handler

import (
	"strings"

	"twigascan/internal/scan/history"
	dErrors "twigascan/pkg/domain-errors"
)

const maxDeviceIDLength = 128

// ScanRequest is the HTTP request body for POST /api/scan.
type ScanRequest struct {
	Content  string `json:"content"`
	DeviceID string `json:"device_id,omitempty"`
}

// Validate implements httputil.Validatable. Content guardrails are applied
// by the service so the CLI and API share them.
func (r *ScanRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	if len(r.DeviceID) > maxDeviceIDLength {
		return dErrors.New(dErrors.CodeValidation, "device_id must be at most 128 characters")
	}
	return nil
}

// ActionRequest is the HTTP request body for PUT /api/scan/{scan_id}/action.
type ActionRequest struct {
	Action  string `json:"action"`
	Outcome string `json:"outcome,omitempty"`

	parsedAction history.UserAction
}

// Validate implements httputil.Validatable.
func (r *ActionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	action := history.UserAction(strings.ToLower(strings.TrimSpace(r.Action)))
	if action == "" {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	if !action.Valid() {
		return dErrors.New(dErrors.CodeValidation, "action must be one of approved, aborted, reported")
	}
	r.parsedAction = action
	r.Outcome = strings.TrimSpace(r.Outcome)
	return nil
}

// ParsedAction returns the validated action.
func (r *ActionRequest) ParsedAction() history.UserAction {
	return r.parsedAction
}

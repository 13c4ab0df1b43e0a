package stackset

import "time"

// OperationStatus is the lifecycle status of a StackSet operation.
type OperationStatus string

const (
	StatusQueued    OperationStatus = "QUEUED"
	StatusRunning   OperationStatus = "RUNNING"
	StatusSucceeded OperationStatus = "SUCCEEDED"
	StatusFailed    OperationStatus = "FAILED"
	StatusStopping  OperationStatus = "STOPPING"
	StatusStopped   OperationStatus = "STOPPED"
)

// Terminal reports whether the operation has finished.
func (s OperationStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusStopped
}

// DriftStatus is the aggregate drift verdict of a drift-detection operation.
type DriftStatus string

const (
	DriftStatusDetectionFailed DriftStatus = "DETECTION_FAILED"
	DriftStatusDrifted         DriftStatus = "DRIFTED"
	DriftStatusInSync          DriftStatus = "IN_SYNC"
	DriftStatusNotChecked      DriftStatus = "NOT_CHECKED"
)

// DriftDetails carries the drift substructure of a drift-detection operation.
// Present only when the operation was a DETECT_DRIFT action.
type DriftDetails struct {
	DriftStatus          DriftStatus `json:"drift_status,omitempty"`
	DriftDetectionStatus string      `json:"drift_detection_status,omitempty"`
	TotalInstances       int32       `json:"total_instances"`
	DriftedInstances     int32       `json:"drifted_instances"`
	InSyncInstances      int32       `json:"in_sync_instances"`
	FailedInstances      int32       `json:"failed_instances"`
	InProgressInstances  int32       `json:"in_progress_instances"`
	LastCheckedAt        *time.Time  `json:"last_checked_at,omitempty"`
}

// StatusDetails carries failure telemetry for non-successful operations.
type StatusDetails struct {
	FailedInstances int32 `json:"failed_instances"`
}

// OperationDetails is the authoritative record of a StackSet operation,
// fetched fresh per evaluation and never cached.
type OperationDetails struct {
	OperationID   string          `json:"operation_id"`
	StackSetID    string          `json:"stack_set_id,omitempty"`
	Action        string          `json:"action,omitempty"`
	Status        OperationStatus `json:"status"`
	StatusReason  string          `json:"status_reason,omitempty"`
	StatusDetails *StatusDetails  `json:"status_details,omitempty"`
	DriftDetails  *DriftDetails   `json:"drift_details,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	EndedAt       *time.Time      `json:"ended_at,omitempty"`
}

// DriftStatusOrEmpty returns the drift status, or "" when the drift
// substructure is absent.
func (o OperationDetails) DriftStatusOrEmpty() DriftStatus {
	if o.DriftDetails == nil {
		return ""
	}
	return o.DriftDetails.DriftStatus
}

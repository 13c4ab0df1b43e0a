package evaluator

import (
	"github.com/yairfalse/driftwatch/internal/stackset"
)

// Classification is the categorical verdict on a drift-detection operation.
type Classification string

const (
	// ClassificationClean: operation succeeded and every instance is in sync.
	ClassificationClean Classification = "CLEAN"
	// ClassificationDriftDetected: a drift status was reported and it is not IN_SYNC.
	ClassificationDriftDetected Classification = "DRIFT_DETECTED"
	// ClassificationOperationFailed: the operation itself failed or was stopped.
	ClassificationOperationFailed Classification = "OPERATION_FAILED"
	// ClassificationIndeterminate: no drift status at all, so the outcome
	// cannot be judged (e.g. a non-drift operation was delivered).
	ClassificationIndeterminate Classification = "INDETERMINATE"
)

// Notifies reports whether this classification publishes a notification.
// CLEAN is the only silent outcome; INDETERMINATE notifies because an
// unclassifiable operation must not disappear without a trace.
func (c Classification) Notifies() bool {
	return c != ClassificationClean
}

// Classify maps operation details to exactly one classification, in strict
// precedence order. An explicit operation failure wins over any drift
// signal, since drift fields may be stale or partially populated when the
// operation did not complete cleanly.
func Classify(op stackset.OperationDetails) Classification {
	if op.Status == stackset.StatusFailed || op.Status == stackset.StatusStopped {
		return ClassificationOperationFailed
	}

	driftStatus := op.DriftStatusOrEmpty()
	if driftStatus == "" {
		return ClassificationIndeterminate
	}
	if driftStatus != stackset.DriftStatusInSync {
		return ClassificationDriftDetected
	}

	return ClassificationClean
}

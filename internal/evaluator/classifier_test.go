package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yairfalse/driftwatch/internal/stackset"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		op       stackset.OperationDetails
		expected Classification
	}{
		{
			name: "succeeded and in sync",
			op: stackset.OperationDetails{
				Status:       stackset.StatusSucceeded,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusInSync},
			},
			expected: ClassificationClean,
		},
		{
			name: "succeeded and drifted",
			op: stackset.OperationDetails{
				Status:       stackset.StatusSucceeded,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusDrifted},
			},
			expected: ClassificationDriftDetected,
		},
		{
			name: "succeeded and detection failed",
			op: stackset.OperationDetails{
				Status:       stackset.StatusSucceeded,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusDetectionFailed},
			},
			expected: ClassificationDriftDetected,
		},
		{
			name: "succeeded and not checked",
			op: stackset.OperationDetails{
				Status:       stackset.StatusSucceeded,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusNotChecked},
			},
			expected: ClassificationDriftDetected,
		},
		{
			name: "failed without drift details",
			op: stackset.OperationDetails{
				Status: stackset.StatusFailed,
			},
			expected: ClassificationOperationFailed,
		},
		{
			name: "stopped",
			op: stackset.OperationDetails{
				Status:       stackset.StatusStopped,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusInSync},
			},
			expected: ClassificationOperationFailed,
		},
		{
			name: "failed takes precedence over drifted",
			op: stackset.OperationDetails{
				Status:       stackset.StatusFailed,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusDrifted},
			},
			expected: ClassificationOperationFailed,
		},
		{
			name: "succeeded without drift details",
			op: stackset.OperationDetails{
				Status: stackset.StatusSucceeded,
			},
			expected: ClassificationIndeterminate,
		},
		{
			name: "succeeded with empty drift status",
			op: stackset.OperationDetails{
				Status:       stackset.StatusSucceeded,
				DriftDetails: &stackset.DriftDetails{},
			},
			expected: ClassificationIndeterminate,
		},
		{
			name: "running with drifted status",
			op: stackset.OperationDetails{
				Status:       stackset.StatusRunning,
				DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusDrifted},
			},
			expected: ClassificationDriftDetected,
		},
		{
			name: "queued without drift details",
			op: stackset.OperationDetails{
				Status: stackset.StatusQueued,
			},
			expected: ClassificationIndeterminate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.op))
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	op := stackset.OperationDetails{
		Status:       stackset.StatusFailed,
		DriftDetails: &stackset.DriftDetails{DriftStatus: stackset.DriftStatusDrifted},
	}

	first := Classify(op)
	second := Classify(op)
	assert.Equal(t, first, second)
}

func TestClassification_Notifies(t *testing.T) {
	assert.False(t, ClassificationClean.Notifies())
	assert.True(t, ClassificationDriftDetected.Notifies())
	assert.True(t, ClassificationOperationFailed.Notifies())
	assert.True(t, ClassificationIndeterminate.Notifies())
}

func TestSubject(t *testing.T) {
	assert.Equal(t,
		"ERROR: StackSet core-networking drift detection failed",
		Subject(ClassificationOperationFailed, "core-networking"))
	assert.Equal(t,
		"DRIFTED: StackSet core-networking is in the drifted state",
		Subject(ClassificationDriftDetected, "core-networking"))
	assert.Equal(t,
		"INDETERMINATE: StackSet core-networking drift detection returned no drift details",
		Subject(ClassificationIndeterminate, "core-networking"))
}

// Package event parses CloudFormation StackSet operation completion events.
//
// Events arrive as EventBridge "CloudFormation StackSet Operation Status
// Change" envelopes, either wrapped ({"detail-type": ..., "detail": {...}})
// or as the bare detail object when the delivery path strips the envelope.
package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

const stackSetARNMarker = ":stackset/"

// CompletionEvent is the parsed form of a StackSet operation status change.
type CompletionEvent struct {
	StackSetARN  string
	StackSetName string
	OperationID  string
	Action       string
	Status       string
}

// MalformedEventError reports an event that cannot be evaluated.
// It is fatal for the invocation; redelivery is the caller's policy.
type MalformedEventError struct {
	Field  string
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed completion event: %s: %s", e.Field, e.Reason)
}

// detail mirrors the EventBridge event detail for StackSet operations.
type detail struct {
	StackSetARN   string `json:"stack-set-arn"`
	OperationID   string `json:"stack-set-operation-id"`
	Action        string `json:"action"`
	StatusDetails struct {
		Status string `json:"status"`
	} `json:"status-details"`
}

type envelope struct {
	DetailType string `json:"detail-type"`
	Source     string `json:"source"`
	Detail     detail `json:"detail"`
}

// Parse validates a raw event payload and extracts the fields needed for
// evaluation. Any missing or unparseable field returns *MalformedEventError.
func Parse(data []byte) (CompletionEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return CompletionEvent{}, &MalformedEventError{Field: "payload", Reason: err.Error()}
	}

	d := env.Detail
	if d.StackSetARN == "" && d.OperationID == "" {
		// Bare detail object, no envelope.
		if err := json.Unmarshal(data, &d); err != nil {
			return CompletionEvent{}, &MalformedEventError{Field: "detail", Reason: err.Error()}
		}
	}

	if d.StackSetARN == "" {
		return CompletionEvent{}, &MalformedEventError{Field: "stack-set-arn", Reason: "missing"}
	}
	if d.OperationID == "" {
		return CompletionEvent{}, &MalformedEventError{Field: "stack-set-operation-id", Reason: "missing"}
	}

	name, err := ExtractStackSetName(d.StackSetARN)
	if err != nil {
		return CompletionEvent{}, err
	}

	return CompletionEvent{
		StackSetARN:  d.StackSetARN,
		StackSetName: name,
		OperationID:  d.OperationID,
		Action:       d.Action,
		Status:       d.StatusDetails.Status,
	}, nil
}

// ExtractStackSetName pulls the StackSet name out of a StackSet ARN:
// arn:aws:cloudformation:REGION:ACCOUNT:stackset/NAME:ID. The name is the
// segment after ":stackset/", terminated by the next ":".
func ExtractStackSetName(arn string) (string, error) {
	_, rest, found := strings.Cut(arn, stackSetARNMarker)
	if !found {
		return "", &MalformedEventError{Field: "stack-set-arn", Reason: fmt.Sprintf("no %q segment in %q", stackSetARNMarker, arn)}
	}

	name, _, _ := strings.Cut(rest, ":")
	if name == "" {
		return "", &MalformedEventError{Field: "stack-set-arn", Reason: fmt.Sprintf("empty stackset name in %q", arn)}
	}

	return name, nil
}

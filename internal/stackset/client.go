// Package stackset queries and triggers CloudFormation StackSet
// drift-detection operations.
package stackset

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/google/uuid"
)

// QueryError reports a failed operation-details lookup. It covers not-found,
// throttling, permission and network failures alike; the evaluation is
// aborted and the error surfaced, never retried here.
type QueryError struct {
	StackSetName string
	OperationID  string
	Err          error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("describe stackset operation %s/%s: %v", e.StackSetName, e.OperationID, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DriftPreferences configures how a triggered drift detection fans out
// across regions and accounts.
type DriftPreferences struct {
	RegionConcurrency  string
	MaxConcurrentCount int32
	ConcurrencyMode    string
}

// cloudFormationAPI is the subset of the CloudFormation client we use.
type cloudFormationAPI interface {
	DescribeStackSetOperation(ctx context.Context, params *cloudformation.DescribeStackSetOperationInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackSetOperationOutput, error)
	DetectStackSetDrift(ctx context.Context, params *cloudformation.DetectStackSetDriftInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DetectStackSetDriftOutput, error)
}

// Client wraps the CloudFormation client with StackSet operation semantics.
// Safe to share across invocations; construct once at startup.
type Client struct {
	cfn cloudFormationAPI
}

// NewClient creates a client from a resolved AWS config.
func NewClient(cfg aws.Config) *Client {
	return &Client{cfn: cloudformation.NewFromConfig(cfg)}
}

// NewClientFromAPI creates a client from an existing API implementation.
func NewClientFromAPI(api cloudFormationAPI) *Client {
	return &Client{cfn: api}
}

// DescribeOperation fetches the full details of a StackSet operation.
func (c *Client) DescribeOperation(ctx context.Context, stackSetName, operationID string) (OperationDetails, error) {
	out, err := c.cfn.DescribeStackSetOperation(ctx, &cloudformation.DescribeStackSetOperationInput{
		StackSetName: aws.String(stackSetName),
		OperationId:  aws.String(operationID),
		CallAs:       cfntypes.CallAsSelf,
	})
	if err != nil {
		return OperationDetails{}, &QueryError{StackSetName: stackSetName, OperationID: operationID, Err: err}
	}
	if out.StackSetOperation == nil {
		return OperationDetails{}, &QueryError{StackSetName: stackSetName, OperationID: operationID, Err: fmt.Errorf("empty operation in response")}
	}

	return convertOperation(*out.StackSetOperation), nil
}

// DetectDrift starts a drift-detection operation for a StackSet and returns
// its operation ID. The operation runs asynchronously; completion arrives as
// an EventBridge status-change event.
func (c *Client) DetectDrift(ctx context.Context, stackSetName string, prefs DriftPreferences) (string, error) {
	out, err := c.cfn.DetectStackSetDrift(ctx, &cloudformation.DetectStackSetDriftInput{
		StackSetName: aws.String(stackSetName),
		OperationId:  aws.String(uuid.NewString()),
		CallAs:       cfntypes.CallAsSelf,
		OperationPreferences: &cfntypes.StackSetOperationPreferences{
			RegionConcurrencyType: cfntypes.RegionConcurrencyType(prefs.RegionConcurrency),
			MaxConcurrentCount:    aws.Int32(prefs.MaxConcurrentCount),
			ConcurrencyMode:       cfntypes.ConcurrencyMode(prefs.ConcurrencyMode),
		},
	})
	if err != nil {
		return "", fmt.Errorf("detect drift for stackset %s: %w", stackSetName, err)
	}

	return aws.ToString(out.OperationId), nil
}

// convertOperation maps the SDK operation record to our domain type.
func convertOperation(op cfntypes.StackSetOperation) OperationDetails {
	details := OperationDetails{
		OperationID:  aws.ToString(op.OperationId),
		StackSetID:   aws.ToString(op.StackSetId),
		Action:       string(op.Action),
		Status:       OperationStatus(op.Status),
		StatusReason: aws.ToString(op.StatusReason),
		CreatedAt:    op.CreationTimestamp,
		EndedAt:      op.EndTimestamp,
	}

	if op.StatusDetails != nil {
		details.StatusDetails = &StatusDetails{
			FailedInstances: aws.ToInt32(op.StatusDetails.FailedStackInstancesCount),
		}
	}

	if dd := op.StackSetDriftDetectionDetails; dd != nil {
		details.DriftDetails = &DriftDetails{
			DriftStatus:          DriftStatus(dd.DriftStatus),
			DriftDetectionStatus: string(dd.DriftDetectionStatus),
			TotalInstances:       aws.ToInt32(dd.TotalStackInstancesCount),
			DriftedInstances:     aws.ToInt32(dd.DriftedStackInstancesCount),
			InSyncInstances:      aws.ToInt32(dd.InSyncStackInstancesCount),
			FailedInstances:      aws.ToInt32(dd.FailedStackInstancesCount),
			InProgressInstances:  aws.ToInt32(dd.InProgressStackInstancesCount),
			LastCheckedAt:        dd.LastDriftCheckTimestamp,
		}
	}

	return details
}

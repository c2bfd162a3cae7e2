package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, ownerEmail string, jobID string, kind string, errorMsg string) error
}

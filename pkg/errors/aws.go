package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

// FromAWSError converts a failed AWS SDK call into an internal AppError. The
// AWS error code, when there is one, becomes the AppError code so it shows up
// in logs.
func FromAWSError(operation string, err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AppError{
			Type:       ErrorTypeInternal,
			Message:    fmt.Sprintf("operation '%s' was interrupted", operation),
			Code:       "TIMEOUT",
			Cause:      err,
			HTTPStatus: http.StatusInternalServerError,
			StackTrace: captureStackTrace(),
		}
	}

	appErr := NewDatabaseError(operation, err)

	var ae smithy.APIError
	if errors.As(err, &ae) {
		appErr.Code = ae.ErrorCode()
		appErr.Details = map[string]interface{}{
			"aws_message": ae.ErrorMessage(),
			"fault":       ae.ErrorFault().String(),
		}
	}

	return appErr
}

// IsThrottling reports whether err is an AWS throttling response.
func IsThrottling(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException", "Throttling":
		return true
	}
	return false
}

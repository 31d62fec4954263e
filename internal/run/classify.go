package run

import (
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ErrorCategory string

const (
	CategoryInvalidInput ErrorCategory = "INVALID_INPUT"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryTimeout      ErrorCategory = "TIMEOUT"
	CategoryUnexpected   ErrorCategory = "UNEXPECTED"
)

func Classify(err error) ErrorCategory {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return CategoryUnexpected
	}

	switch apiErr.ErrorCode() {
	case "InvalidInputException":
		return CategoryInvalidInput
	case "EntityNotFoundException":
		return CategoryNotFound
	case "InternalServiceException":
		return CategoryInternal
	case "OperationTimeoutException":
		return CategoryTimeout
	default:
		return CategoryUnexpected
	}
}

var categoryMessages = map[ErrorCategory]string{
	CategoryInvalidInput: "invalid input",
	CategoryNotFound:     "not found",
	CategoryInternal:     "internal service exception",
	CategoryTimeout:      "operation timeout exception",
	CategoryUnexpected:   "unexpected error",
}

func logRemoteError(log *zap.Logger, err error) {
	category := Classify(err)
	log.Error(categoryMessages[category],
		zap.String("category", string(category)),
		zap.Error(err),
	)
}

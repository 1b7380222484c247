package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cyffff/riskai/pkg/utils/logging"
	"github.com/cyffff/riskai/pkg/utils/safe"
)

// Handle logs the error with a message and returns it unchanged. It ensures
// that all errors, especially 5xx errors, are properly logged with their
// goerr context.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	return err
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// HandleHTTP logs the error and writes a JSON error response.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	body, marshalErr := json.Marshal(errorResponse{
		Error:  err.Error(),
		Status: statusCode,
	})
	if marshalErr != nil {
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, body)
}

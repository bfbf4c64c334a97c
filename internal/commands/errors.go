package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors raised by Handler before or around the wrapped
// function. Errors already built with go-errors pass through unchanged.
const (
	TextCodeInvalidMessage   = "MARKSPACE_COMMAND_INVALID"
	TextCodeCanceled         = "MARKSPACE_COMMAND_CANCELED"
	TextCodeDeadlineExceeded = "MARKSPACE_COMMAND_TIMEOUT"
	TextCodeFailed           = "MARKSPACE_COMMAND_FAILED"
)

type stage string

const (
	stageValidate stage = "validate"
	stageContext  stage = "context"
	stageExecute  stage = "execute"
)

// classify wraps err for the stage it surfaced in. commandType ends up in the
// error metadata so CLI output and logs name the failing command.
func classify(st stage, commandType string, err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}

	category := goerrors.CategoryCommand
	code := TextCodeFailed
	message := commandType + " failed"
	switch {
	case st == stageValidate:
		category = goerrors.CategoryValidation
		code = TextCodeInvalidMessage
		message = commandType + " is invalid"
	case errors.Is(err, context.Canceled):
		code = TextCodeCanceled
		message = commandType + " was cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		code = TextCodeDeadlineExceeded
		message = commandType + " timed out"
	}

	return goerrors.Wrap(err, category, message).
		WithTextCode(code).
		WithMetadata(map[string]any{"command": commandType, "stage": string(st)})
}

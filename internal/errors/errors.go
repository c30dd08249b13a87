package errors

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/storage"
	"github.com/julianstephens/daytrack/internal/validation"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Report logs err and writes its formatted form to w. Validation failures
// and missing records are expected outcomes and are logged at info.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	var verr *validation.Error
	if stderrors.As(err, &verr) || stderrors.Is(err, storage.ErrNotFound) {
		logger.Info("Command rejected", "error", err)
	} else {
		logger.Error("Command execution failed", "error", err)
	}
	fmt.Fprintln(w, Format(err))
}

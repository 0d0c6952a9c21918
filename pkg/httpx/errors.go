package httpx

import (
	"context"
	"net/http"

	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/slogx"
)

// WriteError is the single boundary where failures become responses.
// Tagged errors map to their status code and pass their message through;
// anything untagged is a 500 with a generic message and no internal
// detail.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	var (
		status  int
		message string
		details any
	)

	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
		if fields := apperr.FieldsOf(err); len(fields) > 0 {
			details = fields
		}
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
		message = err.Error()
	case apperr.KindInvalidCredentials:
		status = http.StatusBadRequest
		message = err.Error()
	case apperr.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperr.KindTooManyRequests:
		status = http.StatusTooManyRequests
		message = err.Error()
	default:
		// Unknown failures keep their detail server-side.
		slogx.FromContext(ctx).Error("unhandled error", "err", err)
		status = http.StatusInternalServerError
		message = "Internal Server Error"
	}

	errBody := &ErrorBody{Message: message, Details: details}
	WriteJSON(w, status, Response{Success: false, Error: errBody, Meta: newMeta()})
}

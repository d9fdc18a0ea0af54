package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
	"github.com/hivehoney/aisla-sub000/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError answers with the coded error envelope. Only validation and not-found
// messages reach the client; everything else uses the public message for its code.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := typedError(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logError(ctx, logg, typed, err)
	WriteJSON(w, meta.HTTPStatus, payload)
}

// WriteFlatError answers {"error": message} with the status mapped from err's code.
func WriteFlatError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error, message string) {
	typed := typedError(err)
	meta := pkgerrors.MetadataFor(typed.Code())
	if message == "" {
		message = meta.PublicMessage
	}

	logError(ctx, logg, typed, err)
	WriteJSON(w, meta.HTTPStatus, types.FlatError{Error: message})
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

func typedError(err error) *pkgerrors.Error {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return typed
}

func logError(ctx context.Context, logg *logger.Logger, typed *pkgerrors.Error, err error) {
	if logg == nil {
		return
	}
	fields := pkgerrors.Dump(err).Fields()
	if d := typed.Details(); d != nil {
		if dm, ok := d.(map[string]any); ok {
			if field, ok := dm["field"]; ok {
				fields["field"] = field
			}
		}
	}

	ctx = logg.WithFields(ctx, fields)
	if typed.Code() == pkgerrors.CodeValidation {
		logg.Warn(ctx, "request.error")
		return
	}
	logg.Error(ctx, "request.error", err)
}

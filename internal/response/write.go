// Package response holds the JSON helpers shared by the HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/getsentry/sentry-go"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error classifies err and writes it. Internal failures are logged with their
// cause and reported to Sentry when it is configured; everything else is
// logged at debug.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("method", r.Method)
			scope.SetTag("path", r.URL.Path)
			scope.SetTag("request_id", r.Header.Get("X-Request-ID"))
			sentry.CaptureException(err)
		})
	} else {
		logger.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "kind", e.Kind.String(), "err", err)
	}
	JSON(w, e.Kind.Status(), ErrorBody{Error: e.Message, Code: e.Code})
}

// Decode reads a JSON body into v and runs its validate tags.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid payload")
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validation("missing required field: " + fe.Field())
		case "email":
			return apperr.Validation("invalid email address")
		default:
			return apperr.Validation("invalid value for " + fe.Field())
		}
	}
	return apperr.Validation("invalid payload")
}

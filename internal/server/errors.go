package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/engine"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorKind classifies err for the response body and picks its status.
// Unknown compounds in a request body are a client error; handlers that
// take the compound from the path report 404 themselves.
func errorKind(err error) (int, string) {
	var uc *domain.UnknownCompoundError
	var ip *domain.InvalidParameterError
	var ce *domain.ConfigurationError
	var adv *engine.DailyMaxAdvisory
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &adv):
		return http.StatusConflict, "daily_max"
	case errors.As(err, &uc):
		return http.StatusBadRequest, "unknown_compound"
	case errors.As(err, &ip):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.As(err, &ce):
		return http.StatusBadRequest, "configuration"
	case errors.As(err, &verrs):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := errorKind(err)
	writeErrorStatus(w, status, kind, err)
}

func writeErrorStatus(w http.ResponseWriter, status int, kind string, err error) {
	body := map[string]any{"error": errorMessage(err), "kind": kind}
	var adv *engine.DailyMaxAdvisory
	if errors.As(err, &adv) {
		body["advisory"] = adv
	}
	writeJSON(w, status, body)
}

func errorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed "+fe.Tag())
	}
	return "invalid request: " + strings.Join(fields, ", ")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg, "kind": "bad_request"})
}

// Package models defines the closed record types of the storefront
// collections (products, orders, users) and of the local client state
// (session, favorites, cart lines), together with their validation.
package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/common"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v's struct tags and reports the first violation as a
// *common.ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return common.NewValidationError(lowerFirst(fe.Field()), describe(fe))
	}
	return common.NewValidationError("", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" || strings.ToUpper(s) == s {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func stringField(rec docstore.Record, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}

func intField(rec docstore.Record, key string) int64 {
	switch v := rec[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func floatField(rec docstore.Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func stringsField(rec docstore.Record, key string) []string {
	if s, ok := rec[key].([]string); ok {
		return s
	}
	return nil
}

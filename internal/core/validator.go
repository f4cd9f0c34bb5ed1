package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"beachscore/internal/types"
)

// Validator wraps go-playground/validator and reports failures as
// validation AppErrors keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator builds a Validator that names fields by their json tag.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v, logger: logger}
}

// ValidateStruct returns nil or an AppError. A missing required field yields
// validation_missing_required_field; any other rule yields
// validation_invalid_parameter. details.fields maps each field path to the
// failed rule.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		if v.logger != nil {
			v.logger.Error("validator misuse", "error", err)
		}
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation failed", err)
	}

	code := types.ErrCodeValidationInvalidParam
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe.Namespace())] = ruleDescription(fe)
		if fe.Tag() == "required" {
			code = types.ErrCodeValidationMissingField
		}
	}

	return types.NewAppErrorWithDetails(code, "request validation failed", err, map[string]any{"fields": fields})
}

// fieldPath drops the root struct name: "scoreRequest.conditions.timestamp"
// becomes "conditions.timestamp".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func ruleDescription(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// RegisterValidators installs the domain binding tags on gin's validator
// and reports field names by their json tag.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validators := map[string]validator.Func{
		"emotion_type": func(fl validator.FieldLevel) bool {
			return models.EmotionType(fl.Field().String()).Valid()
		},
		"activity_type": func(fl validator.FieldLevel) bool {
			return models.ActivityType(fl.Field().String()).Valid()
		},
		"checkin_context": func(fl validator.FieldLevel) bool {
			return models.CheckInContext(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// bindingFieldErrors converts validator failures into field errors. It
// returns nil when err is not a validation failure.
func bindingFieldErrors(err error) []apierror.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierror.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Code:    fe.Tag(),
		})
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "emotion_type":
		return "must be a known emotion type"
	case "activity_type":
		return "must be one of: VOICE_JOURNAL, EMOTIONAL_CHECKIN, TOOL_USAGE"
	case "checkin_context":
		return "must be a known check-in context"
	}
	return "is invalid"
}

// bind decodes the JSON body into req, writing a problem response on
// failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if fields := bindingFieldErrors(err); fields != nil {
			writeFieldErrors(c, fields)
			return false
		}
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return false
	}
	return true
}

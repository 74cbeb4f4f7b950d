package controllers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/wizard"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// newValidator checks `validate` tags and reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(wizard.EmailShapeTag, wizard.EmailShapeValidator)
	return v
}

// bindAndValidate decodes the JSON body into dst and runs the struct rules.
func bindAndValidate(c *gin.Context, v *validator.Validate, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.New(apperrors.ErrInvalidJSON.Code, apperrors.ErrInvalidJSON.Message, err)
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.BadRequest(fieldMessage(verrs[0]))
		}
		return apperrors.BadRequest(err.Error())
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": is required"
	case wizard.EmailShapeTag:
		return fe.Field() + ": must be a valid email address"
	default:
		return fe.Field() + ": is invalid"
	}
}

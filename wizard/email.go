package wizard

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// emailPattern only checks the local@domain.tld shape. It is shared by every
// form and endpoint that accepts an email address.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// EmailShapeTag is the validator tag backed by ValidEmail.
const EmailShapeTag = "emailshape"

var EmailShapeValidator validator.Func = func(fl validator.FieldLevel) bool {
	return ValidEmail(fl.Field().String())
}

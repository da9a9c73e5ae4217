package utils

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Optional leading +, then 10 to 13 digits each optionally followed by a space or dash
var contactNumberPattern = regexp.MustCompile(`^\+?(\d[\s-]?){10,13}$`)

// ValidContactNumber reports whether s looks like a phone number
func ValidContactNumber(s string) bool {
	return contactNumberPattern.MatchString(s)
}

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("contact_number", func(fl validator.FieldLevel) bool {
		return ValidContactNumber(fl.Field().String())
	})
}

// ValidateDecimal checks d fits a column with maxDigits total digits and places fraction digits
func ValidateDecimal(d decimal.Decimal, maxDigits, places int) error {
	if !d.Equal(d.Round(int32(places))) {
		return fmt.Errorf("ensure that there are no more than %d decimal places", places)
	}
	whole := d.Abs().Truncate(0)
	if !whole.IsZero() && len(whole.String()) > maxDigits-places {
		return fmt.Errorf("ensure that there are no more than %d digits before the decimal point", maxDigits-places)
	}
	return nil
}

// ValidateAmount is ValidateDecimal for values that may not be negative
func ValidateAmount(d decimal.Decimal, maxDigits, places int) error {
	if d.IsNegative() {
		return fmt.Errorf("ensure this value is greater than or equal to 0")
	}
	return ValidateDecimal(d, maxDigits, places)
}

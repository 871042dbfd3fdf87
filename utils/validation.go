// utils/validation.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var mobilePattern = regexp.MustCompile(`^5[0-9]{9}$`)

// PhoneResult is the outcome of ValidatePhone.
type PhoneResult struct {
	IsValid   bool   `json:"isValid"`
	Clean     string `json:"clean"`     // stored form, e.g. 5551234567
	Formatted string `json:"formatted"` // 0555 123 45 67, or the input when invalid
}

// ValidatePhone normalizes a Turkish mobile number typed as free text.
// Non-digits are dropped, then one leading 0. The number is valid when ten
// digits starting with 5 remain.
func ValidatePhone(phone string) PhoneResult {
	clean := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	clean = strings.TrimPrefix(clean, "0")

	res := PhoneResult{
		IsValid:   mobilePattern.MatchString(clean),
		Clean:     clean,
		Formatted: phone,
	}
	if res.IsValid {
		res.Formatted = "0" + clean[0:3] + " " + clean[3:6] + " " + clean[6:8] + " " + clean[8:10]
	}
	return res
}

// InternationalPhone converts a local number to the 90XXXXXXXXXX form used
// by SMS gateways.
func InternationalPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	digits = strings.TrimPrefix(digits, "0")
	if !strings.HasPrefix(digits, "90") {
		digits = "90" + digits
	}
	return digits
}

// RegisterValidators adds the "trphone" tag to gin's binding validator.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("trphone", func(fl validator.FieldLevel) bool {
			return ValidatePhone(fl.Field().String()).IsValid
		})
	}
}

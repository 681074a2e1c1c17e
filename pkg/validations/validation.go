// All global custom validations in Welzyne are defined here.
// These validations are allowed to be used anywhere in the application.

package validations

import (
	"Welzyne/pkg/log"
	"context"
	"regexp"
	"unicode"

	"github.com/asaskevich/govalidator"
)

// Safaricom subscriber numbers start with 07 or 01 followed by 8 digits.
var mpesaNumberRegex = regexp.MustCompile(`^(07|01)[0-9]{8}$`)

func RegisterCustomValidations(ctx context.Context, logger log.Logger) {
	// This global validation doesn't allow whitespace in input.
	govalidator.TagMap["nospace"] = govalidator.Validator(func(str string) bool {
		return !govalidator.HasWhitespace(str)
	})
	// This custom validation checks for password strength.
	// Only checks for 1 letter and 1 number, nothing too complicated.
	govalidator.TagMap["pwdstrength"] = govalidator.Validator(func(pwd string) bool {
		hasChar, hasNum := false, false
		for _, char := range pwd {
			if unicode.IsLetter(char) {
				hasChar = true
			}
			if unicode.IsNumber(char) {
				hasNum = true
			}
			if hasChar && hasNum {
				break
			}
		}
		return hasChar && hasNum
	})
	// This custom validation checks if input is a valid M-Pesa subscriber number.
	govalidator.TagMap["mpesanumber"] = govalidator.Validator(func(number string) bool {
		return mpesaNumberRegex.MatchString(number)
	})
	logger.WithCtx(ctx).Info().Msg("Registered global custom validations.")
}

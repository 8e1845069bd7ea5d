package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/am-3/campus/core"
)

// password policy
var (
	pwdMinLen        = 8
	pwdMinLenText    = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)
	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// ValidatePassword applies the password policy to the provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - no similarity with user attributes
func ValidatePassword(pwd string, usr User) error {
	fieldErr := func(text string) error {
		return core.NewValidationError(errors.New(text), core.FieldError{Field: "password", Error: text})
	}

	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		return fieldErr(pwdMinLenText)
	}

	var digitCount int
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return fieldErr(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == pwdLen {
		return fieldErr(pwdNotAllNumText)
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	if getRatio(lpwd, strings.ToLower(usr.FullName())) >= pwdMaxSim ||
		getRatio(lpwd, strings.ToLower(usr.RollNo)) >= pwdMaxSim ||
		getRatio(lpwd, strings.ToLower(usr.Email)) >= pwdMaxSim {
		return fieldErr(pwdAttrSimText)
	}
	return nil
}

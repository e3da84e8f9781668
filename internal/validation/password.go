// Package validation содержит проверки пользовательского ввода, не зависящие от HTTP.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8

	// SpecialCharacters - допустимый набор спецсимволов для пароля
	SpecialCharacters = `!@#$%^&*(),.?":{}|<>`
)

const (
	MsgPasswordTooShort  = "Password must be at least 8 characters long"
	MsgPasswordNoUpper   = "Password must contain at least one uppercase letter"
	MsgPasswordNoLower   = "Password must contain at least one lowercase letter"
	MsgPasswordNoDigit   = "Password must contain at least one number"
	MsgPasswordNoSpecial = "Password must contain at least one special character"
)

type PasswordResult struct {
	Valid  bool
	Errors []string
}

// ValidatePassword проверяет сложность пароля и возвращает все нарушенные правила.
func ValidatePassword(password string) PasswordResult {
	var hasUpper, hasLower, hasDigit, hasSpecial bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(SpecialCharacters, r):
			hasSpecial = true
		}
	}

	errs := make([]string, 0)

	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs = append(errs, MsgPasswordTooShort)
	}
	if !hasUpper {
		errs = append(errs, MsgPasswordNoUpper)
	}
	if !hasLower {
		errs = append(errs, MsgPasswordNoLower)
	}
	if !hasDigit {
		errs = append(errs, MsgPasswordNoDigit)
	}
	if !hasSpecial {
		errs = append(errs, MsgPasswordNoSpecial)
	}

	return PasswordResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

package validation

import "unicode"

// checkPassword enforces the account password policy. Checks run in a fixed
// order and the first failure wins: length, lowercase, uppercase, digit.
func (r *Rules) checkPassword(password string) Result {
	if len(password) < r.passwordMinLength {
		return failf("password must be at least %d characters", r.passwordMinLength)
	}
	var hasLower, hasUpper, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasLower {
		return fail("password must contain a lowercase letter")
	}
	if !hasUpper {
		return fail("password must contain an uppercase letter")
	}
	if !hasDigit {
		return fail("password must contain a digit")
	}
	return ok()
}

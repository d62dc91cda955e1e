package auth

import "unicode/utf8"

const PasswordPolicyMessage = "Password must be at least 6 characters long and include one digit and one special character."

const minPasswordLen = 6

// ValidatePassword reports whether p has at least 6 characters, an ASCII
// digit, and a character that is not an ASCII letter or digit.
func ValidatePassword(p string) bool {
	if utf8.RuneCountInString(p) < minPasswordLen {
		return false
	}
	var digit, symbol bool
	for _, r := range p {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			symbol = true
		}
	}
	return digit && symbol
}

package cardgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// LuhnValid reports whether pan is a non-empty digit string whose Luhn sum is
// a multiple of ten.
func LuhnValid(pan string) bool {
	if pan == "" || !IsDigits(pan) {
		return false
	}
	return luhnSum(pan, false)%10 == 0
}

// luhnSum walks right to left doubling every second digit. When dblFirst is
// set the rightmost digit is doubled, which is what a body without its check
// digit needs.
func luhnSum(digits string, dblFirst bool) int {
	sum, dbl := 0, dblFirst
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum
}

func luhnCheckDigit(body string) string {
	cd := (10 - (luhnSum(body, true) % 10)) % 10
	return string('0' + byte(cd))
}

// ValidatePAN checks length, digits and the Luhn check digit.
func ValidatePAN(pan string) error {
	if pan == "" {
		return fmt.Errorf("pan is required")
	}
	if !IsDigits(pan) {
		return fmt.Errorf("pan must contain digits only")
	}
	if l := len(pan); l < 12 || l > 19 {
		return fmt.Errorf("pan length must be 12..19 digits (got %d)", l)
	}
	if !LuhnValid(pan) {
		return fmt.Errorf("invalid luhn check digit")
	}
	return nil
}

// GeneratePANWithLength builds a Luhn-valid PAN of totalLen digits starting
// with prefix. sequence, when set, overrides the digits right before the check
// digit.
func GeneratePANWithLength(prefix string, totalLen int, sequence string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	if totalLen < 12 || totalLen > 19 {
		return "", fmt.Errorf("total length must be 12..19")
	}
	fill := totalLen - 1 - len(prefix)
	if fill <= 0 {
		return "", fmt.Errorf("prefix too long: %s", prefix)
	}
	seq := strings.TrimSpace(sequence)
	if seq != "" {
		if !IsDigits(seq) {
			return "", fmt.Errorf("sequence must be numeric")
		}
		if len(seq) > fill {
			return "", fmt.Errorf("sequence length %d exceeds %d", len(seq), fill)
		}
	}
	digitsPart, err := randomDigits(fill)
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	b := []byte(digitsPart)
	if seq != "" {
		copy(b[fill-len(seq):], seq)
	}
	body := prefix + string(b)
	return body + luhnCheckDigit(body), nil
}

// randomDigits returns count random decimal digits. Bytes >= 250 are rejected
// so every digit is equally likely.
func randomDigits(count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 64)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			b := buf[i]
			if b < threshold {
				sb.WriteByte('0' + (b % 10))
			}
		}
	}
	return sb.String(), nil
}

// ValidatePrefix accepts 1 to 9 leading digits.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if !IsDigits(prefix) {
		return fmt.Errorf("prefix must contain digits only")
	}
	if len(prefix) > 9 {
		return fmt.Errorf("prefix must be at most 9 digits")
	}
	return nil
}

func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func LastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// MaskPAN keeps the first six and last four digits of long numbers and only
// the last four of short ones.
func MaskPAN(pan string) string {
	cleaned := NormalizePAN(pan)
	n := len(cleaned)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	if n < 10 {
		return strings.Repeat("*", n-4) + cleaned[n-4:]
	}
	return cleaned[:6] + strings.Repeat("*", n-10) + cleaned[n-4:]
}

// NormalizePAN strips spaces, tabs and dashes.
func NormalizePAN(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		default:
			return r
		}
	}, s)
}

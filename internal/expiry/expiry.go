package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var defaultLoc = time.UTC

// SetDefaultExpiryLocation sets the default time location for expiry calculations (fallback UTC).
func SetDefaultExpiryLocation(loc *time.Location) {
	if loc != nil {
		defaultLoc = loc
	}
}

// NormalizeMonth zero-pads single digit months. Anything else is returned trimmed.
func NormalizeMonth(month string) string {
	m := strings.TrimSpace(month)
	if len(m) == 1 && isDigits(m) {
		return "0" + m
	}
	return m
}

// NormalizeYear expands two digit years into the 2000s. Four digit years and
// values that are not short digit strings are returned trimmed.
func NormalizeYear(year string) string {
	y := strings.TrimSpace(year)
	if len(y) > 2 || !isDigits(y) {
		return y
	}
	if len(y) == 1 {
		y = "0" + y
	}
	return "20" + y
}

// YYMM joins a four digit year and a month into the ISO 8583 expiry format.
func YYMM(year, month string) (string, error) {
	y, m := NormalizeYear(year), NormalizeMonth(month)
	if len(y) != 4 {
		return "", fmt.Errorf("expiry year must be 4 digits")
	}
	yymm := y[2:] + m
	if err := ValidateYYMM(yymm); err != nil {
		return "", err
	}
	return yymm, nil
}

// ParseYYMMEndOfMonth parses YYMM into the last instant of that month in loc.
func ParseYYMMEndOfMonth(yymm string, loc *time.Location) (time.Time, error) {
	if err := ValidateYYMM(yymm); err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = defaultLoc
	}
	yy, _ := strconv.Atoi(yymm[:2])
	mm, _ := strconv.Atoi(yymm[2:])
	year := 2000 + yy
	firstNext := time.Date(year, time.Month(mm), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	return firstNext.Add(-time.Nanosecond), nil
}

// IsExpired reports whether 'at' is strictly after the end of the YYMM month in loc.
func IsExpired(yymm string, at time.Time, loc *time.Location) (bool, error) {
	end, err := ParseYYMMEndOfMonth(yymm, loc)
	if err != nil {
		return false, err
	}
	return at.In(end.Location()).After(end), nil
}

// ParseCardFace accepts "MM/YY" or "MMYY" and returns YYMM.
func ParseCardFace(in string) (string, error) {
	s := strings.TrimSpace(in)
	s = strings.ReplaceAll(s, "/", "")
	if len(s) != 4 {
		return "", fmt.Errorf("card face must be MM/YY or MMYY")
	}
	if !isDigits(s) {
		return "", fmt.Errorf("card face must be digits")
	}
	mm, _ := strconv.Atoi(s[:2])
	if mm < 1 || mm > 12 {
		return "", fmt.Errorf("month must be 01..12")
	}
	return s[2:] + s[:2], nil
}

// ValidateYYMM checks the expiry is four digits with a month in 01..12.
func ValidateYYMM(yymm string) error {
	if len(yymm) != 4 {
		return fmt.Errorf("expiry must be YYMM (4 digits)")
	}
	if !isDigits(yymm) {
		return fmt.Errorf("expiry must be digits: YYMM")
	}
	mm := int(yymm[2]-'0')*10 + int(yymm[3]-'0')
	if mm < 1 || mm > 12 {
		return fmt.Errorf("expiry month must be 01..12")
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

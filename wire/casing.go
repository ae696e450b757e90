package wire

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Camelize turns lower_snake (or dash/space separated) names into lowerCamel.
// Purely numeric names are left alone.
func Camelize(s string) string {
	if s == "" || isNumeric(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	first, size := utf8.DecodeRuneInString(out)
	return string(unicode.ToLower(first)) + out[size:]
}

// Decamelize splits lowerCamel names before every upper case letter and joins
// the lower cased pieces with underscores. Digits never start a new word, so
// shippingAddress1 becomes shipping_address1.
func Decamelize(s string) string {
	if s == "" || isNumeric(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CamelizeKeys returns v with every Record key, at any depth, camelized. It is
// the second pass after Decode and leaves the input untouched.
func CamelizeKeys(v any) any {
	return renameKeys(v, Camelize)
}

func renameKeys(v any, rename func(string) string) any {
	switch t := v.(type) {
	case *Record:
		out := NewRecord()
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			out.Set(rename(k), renameKeys(val, rename))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = renameKeys(e, rename)
		}
		return out
	default:
		return v
	}
}

// Package track decodes ISO/IEC 7813 magnetic stripe payloads.
package track

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnrecognized = errors.New("unrecognized track data")

// Data is what a card-present read yields. Expiration fields are two digits each.
type Data struct {
	HolderName      string
	Number          string
	ExpirationMonth string
	ExpirationYear  string
}

// Decoder turns a raw stripe read into card data.
type Decoder interface {
	Decode(raw string) (Data, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(raw string) (Data, error)

func (f DecoderFunc) Decode(raw string) (Data, error) { return f(raw) }

// Default understands track 1 (%B...^NAME^YYMM...?) and falls back to track 2
// (;PAN=YYMM...?) when only that is present.
var Default Decoder = DecoderFunc(Decode)

func Decode(raw string) (Data, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "%B"); i >= 0 {
		return decodeTrack1(s[i+2:])
	}
	if i := strings.Index(s, ";"); i >= 0 {
		return decodeTrack2(s[i+1:])
	}
	return Data{}, ErrUnrecognized
}

func decodeTrack1(s string) (Data, error) {
	if end := strings.IndexByte(s, '?'); end >= 0 {
		s = s[:end]
	}
	parts := strings.SplitN(s, "^", 3)
	if len(parts) != 3 {
		return Data{}, fmt.Errorf("track 1: expected 3 fields, got %d: %w", len(parts), ErrUnrecognized)
	}
	number := parts[0]
	if !digits(number) {
		return Data{}, fmt.Errorf("track 1: account number: %w", ErrUnrecognized)
	}
	yymm := parts[2]
	if len(yymm) < 4 || !digits(yymm[:4]) {
		return Data{}, fmt.Errorf("track 1: expiration: %w", ErrUnrecognized)
	}
	return Data{
		HolderName:      holderName(parts[1]),
		Number:          number,
		ExpirationYear:  yymm[:2],
		ExpirationMonth: yymm[2:4],
	}, nil
}

func decodeTrack2(s string) (Data, error) {
	if end := strings.IndexByte(s, '?'); end >= 0 {
		s = s[:end]
	}
	sep := strings.IndexAny(s, "=D")
	if sep <= 0 {
		return Data{}, fmt.Errorf("track 2: missing separator: %w", ErrUnrecognized)
	}
	number, rest := s[:sep], s[sep+1:]
	if !digits(number) || len(rest) < 4 || !digits(rest[:4]) {
		return Data{}, fmt.Errorf("track 2: %w", ErrUnrecognized)
	}
	return Data{
		Number:          number,
		ExpirationYear:  rest[:2],
		ExpirationMonth: rest[2:4],
	}, nil
}

// holderName turns "SURNAME/GIVEN.TITLE" into "GIVEN SURNAME".
func holderName(field string) string {
	field = strings.TrimSpace(field)
	surname, given, ok := strings.Cut(field, "/")
	if !ok {
		return field
	}
	if dot := strings.IndexByte(given, '.'); dot >= 0 {
		given = given[:dot]
	}
	return strings.TrimSpace(strings.TrimSpace(given) + " " + strings.TrimSpace(surname))
}

func digits(s string) bool {
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

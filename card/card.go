// Package card normalizes payment card input into a canonical record and
// classifies it by network.
//
// A Card is built from one of three input shapes: full fields (first and last
// name), compact fields (a single holder name) or raw magnetic stripe data.
// Classification runs on construction and again whenever the number or the
// verification value changes. Malformed input never fails construction; it
// leaves the card without a network and with Valid reporting false.
package card

import (
	"strings"
	"time"

	"github.com/alovak/cardflow-gateway/internal/cardgen"
	"github.com/alovak/cardflow-gateway/internal/expiry"
	"github.com/alovak/cardflow-gateway/internal/track"
	"golang.org/x/exp/slog"
)

// Address is a flat postal block. Nothing here is validated.
type Address struct {
	Address1    string
	Address2    string
	City        string
	State       string
	Zip         string
	Country     string
	PhoneNumber string
}

// Card is the canonical card record. Fields that drive classification are
// only reachable through accessors and setters so the network and validity
// can never drift from the number they describe.
type Card struct {
	HolderName string
	FirstName  string
	LastName   string
	Email      string

	number            string
	expirationMonth   string
	expirationYear    string
	verificationValue string
	trackData         string

	network Network
	valid   bool
	policy  MatchPolicy

	billing  *Address
	shipping *Address
}

type options struct {
	policy  MatchPolicy
	decoder track.Decoder
}

// Option configures New.
type Option func(*options)

// WithMatchPolicy selects how overlapping rules are resolved.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithTrackDecoder replaces the stripe decoder used for track input.
func WithTrackDecoder(d track.Decoder) Option {
	return func(o *options) {
		if d != nil {
			o.decoder = d
		}
	}
}

// New builds and classifies a card from in.
func New(in Input, opts ...Option) *Card {
	o := options{policy: LastMatch, decoder: track.Default}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Card{policy: o.policy}
	switch in.Mode {
	case ModeTrack:
		c.trackData = in.Track
		// an unreadable stripe still yields a card, just an unclassified one
		if d, err := o.decoder.Decode(in.Track); err == nil {
			c.HolderName = d.HolderName
			c.number = cardgen.NormalizePAN(d.Number)
			c.expirationMonth = expiry.NormalizeMonth(d.ExpirationMonth)
			c.expirationYear = expiry.NormalizeYear(d.ExpirationYear)
		}
	case ModeCompact:
		c.HolderName = strings.TrimSpace(in.HolderName)
		c.Email = strings.TrimSpace(in.Email)
		c.setDirectEntry(in)
	default:
		c.FirstName = strings.TrimSpace(in.FirstName)
		c.LastName = strings.TrimSpace(in.LastName)
		c.Email = strings.TrimSpace(in.Email)
		c.setDirectEntry(in)
	}

	c.classify()
	return c
}

func (c *Card) setDirectEntry(in Input) {
	c.number = cardgen.NormalizePAN(in.Number)
	c.expirationMonth = expiry.NormalizeMonth(in.Month)
	c.expirationYear = expiry.NormalizeYear(in.Year)
	c.verificationValue = strings.TrimSpace(in.CVC)
}

func (c *Card) classify() {
	res := Classify(c.number, c.verificationValue, c.policy)
	c.network, c.valid = res.Network, res.Valid
}

func (c *Card) Number() string            { return c.number }
func (c *Card) ExpirationMonth() string   { return c.expirationMonth }
func (c *Card) ExpirationYear() string    { return c.expirationYear }
func (c *Card) VerificationValue() string { return c.verificationValue }
func (c *Card) TrackData() string         { return c.trackData }

// Network is empty when no rule matched.
func (c *Card) Network() Network { return c.network }

// Valid reports a matched network and a passing Luhn check. It says nothing
// about whether the issuer knows the card.
func (c *Card) Valid() bool { return c.valid }

// SetNumber replaces the number and reclassifies.
func (c *Card) SetNumber(number string) {
	c.number = cardgen.NormalizePAN(number)
	c.classify()
}

// SetVerificationValue replaces the CVC and reclassifies.
func (c *Card) SetVerificationValue(cvc string) {
	c.verificationValue = strings.TrimSpace(cvc)
	c.classify()
}

// SetBillingAddress stores a copy of a.
func (c *Card) SetBillingAddress(a Address) {
	c.billing = &a
}

// SetShippingAddress stores a copy of a.
func (c *Card) SetShippingAddress(a Address) {
	c.shipping = &a
}

func (c *Card) BillingAddress() (Address, bool) {
	if c.billing == nil {
		return Address{}, false
	}
	return *c.billing, true
}

func (c *Card) ShippingAddress() (Address, bool) {
	if c.shipping == nil {
		return Address{}, false
	}
	return *c.shipping, true
}

// CanonicalFields flattens the card for request serialization. Keys are
// camel case and unset values are left out.
func (c *Card) CanonicalFields() map[string]any {
	out := map[string]any{
		"number": c.number,
		"month":  c.expirationMonth,
		"year":   c.expirationYear,
	}
	optional := []struct {
		key, val string
	}{
		{"fullName", c.HolderName},
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"verificationValue", c.verificationValue},
		{"trackData", c.trackData},
		{"cardType", string(c.network)},
	}
	for _, f := range optional {
		if f.val != "" {
			out[f.key] = f.val
		}
	}
	return out
}

// AddressFields flattens the billing and shipping blocks. Shipping keys carry
// a "shipping" prefix.
func (c *Card) AddressFields() map[string]any {
	out := map[string]any{}
	if c.billing != nil {
		addAddress(out, "", *c.billing)
	}
	if c.shipping != nil {
		addAddress(out, "shipping", *c.shipping)
	}
	return out
}

func addAddress(out map[string]any, prefix string, a Address) {
	key := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + strings.ToUpper(name[:1]) + name[1:]
	}
	out[key("address1")] = a.Address1
	out[key("city")] = a.City
	out[key("state")] = a.State
	out[key("zip")] = a.Zip
	out[key("country")] = a.Country
	if a.Address2 != "" {
		out[key("address2")] = a.Address2
	}
	if a.PhoneNumber != "" {
		out[key("phoneNumber")] = a.PhoneNumber
	}
}

// Masked returns the number with the middle digits hidden.
func (c *Card) Masked() string {
	return cardgen.MaskPAN(c.number)
}

// Expired reports whether the card's expiration month ended before at. Cards
// with an unusable expiration return an error.
func (c *Card) Expired(at time.Time) (bool, error) {
	yymm, err := expiry.YYMM(c.expirationYear, c.expirationMonth)
	if err != nil {
		return false, err
	}
	return expiry.IsExpired(yymm, at, nil)
}

// LogValue keeps the full number and CVC out of logs.
func (c *Card) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("number", c.Masked()),
		slog.String("network", string(c.network)),
		slog.Bool("valid", c.valid),
	}
	if c.trackData != "" {
		attrs = append(attrs, slog.Bool("card_present", true))
	}
	return slog.GroupValue(attrs...)
}

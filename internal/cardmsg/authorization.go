// Package cardmsg projects classified cards onto ISO 8583 authorization
// requests (0100).
package cardmsg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/internal/expiry"
	"github.com/moov-io/iso8583"
)

const mtiAuthorization = "0100"

const (
	entryManual = "012"
	entryStripe = "901"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// numeric ISO 4217 codes for the alpha codes the gateway accepts
var currencies = map[string]string{
	"USD": "840",
	"EUR": "978",
	"GBP": "826",
	"JPY": "392",
	"CAD": "124",
	"AUD": "036",
}

type AuthorizationRequest struct {
	Amount   int64
	Currency string
	Card     *card.Card
	// Optional STAN (DE11); nil when not provided
	STAN *int
}

// Authorization is the readable side of a packed 0100 message.
type Authorization struct {
	MTI      string
	PAN      string
	Amount   int64
	Currency string
	STAN     int
	Expiry   string // YYMM
	Track2   string
	Entry    string
}

// NewAuthorization builds a 0100 message. Stripe read cards carry DE35;
// keyed cards carry DE2 and DE14.
func NewAuthorization(req AuthorizationRequest) (*iso8583.Message, error) {
	if req.Card == nil {
		return nil, errors.New("card is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", req.Amount)
	}
	currency, ok := currencies[strings.ToUpper(req.Currency)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, req.Currency)
	}

	msg := iso8583.NewMessage(iso8583.Spec87)
	msg.MTI(mtiAuthorization)

	fields := map[int]string{
		3:  "000000",
		4:  fmt.Sprintf("%012d", req.Amount),
		49: currency,
	}
	if req.STAN != nil {
		fields[11] = fmt.Sprintf("%06d", *req.STAN)
	}

	if t2 := track2(req.Card.TrackData()); t2 != "" {
		fields[22] = entryStripe
		fields[35] = t2
	} else {
		yymm, err := expiry.YYMM(req.Card.ExpirationYear(), req.Card.ExpirationMonth())
		if err != nil {
			return nil, fmt.Errorf("card expiry: %w", err)
		}
		fields[2] = req.Card.Number()
		fields[14] = yymm
		fields[22] = entryManual
	}

	for id, v := range fields {
		if err := msg.Field(id, v); err != nil {
			return nil, fmt.Errorf("setting field %d: %w", id, err)
		}
	}
	return msg, nil
}

// PackAuthorization is NewAuthorization followed by Pack.
func PackAuthorization(req AuthorizationRequest) ([]byte, error) {
	msg, err := NewAuthorization(req)
	if err != nil {
		return nil, err
	}
	b, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("packing message: %w", err)
	}
	return b, nil
}

// UnpackAuthorization reads back a packed 0100 message.
func UnpackAuthorization(b []byte) (*Authorization, error) {
	msg := iso8583.NewMessage(iso8583.Spec87)
	if err := msg.Unpack(b); err != nil {
		return nil, fmt.Errorf("unpacking message: %w", err)
	}

	mti, err := msg.GetMTI()
	if err != nil {
		return nil, fmt.Errorf("reading mti: %w", err)
	}
	if mti != mtiAuthorization {
		return nil, fmt.Errorf("unexpected mti %s", mti)
	}

	get := func(id int) string {
		s, _ := msg.GetString(id)
		return s
	}

	auth := &Authorization{
		MTI:    mti,
		PAN:    get(2),
		Expiry: get(14),
		Track2: get(35),
		Entry:  get(22),
	}
	if auth.Amount, err = strconv.ParseInt(get(4), 10, 64); err != nil {
		return nil, fmt.Errorf("reading amount: %w", err)
	}
	if s := get(11); s != "" {
		if auth.STAN, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("reading stan: %w", err)
		}
	}
	if auth.PAN == "" && auth.Track2 != "" {
		auth.PAN, _, _ = strings.Cut(auth.Track2, "=")
	}

	code := get(49)
	for alpha, numeric := range currencies {
		if numeric == code {
			auth.Currency = alpha
		}
	}
	return auth, nil
}

// track2 returns the track 2 contents without sentinels, or "" when raw holds
// no track 2.
func track2(raw string) string {
	i := strings.IndexByte(raw, ';')
	if i < 0 {
		return ""
	}
	t := raw[i+1:]
	if j := strings.IndexByte(t, '?'); j >= 0 {
		t = t[:j]
	}
	return strings.Replace(t, "D", "=", 1)
}

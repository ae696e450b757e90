package spreedly

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/wire"
)

// Source is what a payment is charged to.
type Source interface {
	sourceFields() map[string]any
}

// PaymentMethodToken charges a tokenized payment method.
type PaymentMethodToken string

func (t PaymentMethodToken) sourceFields() map[string]any {
	return map[string]any{"paymentMethodToken": string(t)}
}

type cardSource struct {
	card *card.Card
}

func (s cardSource) sourceFields() map[string]any {
	return map[string]any{"creditCard": cardFields(s.card)}
}

// FromCard charges the card directly instead of a stored payment method.
func FromCard(c *card.Card) Source {
	return cardSource{card: c}
}

// Authorize reserves amount, in minor units, on the source. info carries extra
// transaction fields such as orderId and may be nil; the call's own fields win
// on collisions.
func (c *Client) Authorize(ctx context.Context, gatewayToken string, src Source, amount int64, currency string, info map[string]any) (*wire.Record, error) {
	return c.charge(ctx, gatewayToken, "authorize", src, amount, currency, info)
}

func (c *Client) Purchase(ctx context.Context, gatewayToken string, src Source, amount int64, currency string, info map[string]any) (*wire.Record, error) {
	return c.charge(ctx, gatewayToken, "purchase", src, amount, currency, info)
}

func (c *Client) charge(ctx context.Context, gatewayToken, action string, src Source, amount int64, currency string, info map[string]any) (*wire.Record, error) {
	fields := src.sourceFields()
	fields["amount"] = amount
	fields["currencyCode"] = currency

	return c.record(ctx, request{
		method: http.MethodPost,
		path:   "gateways/" + url.PathEscape(gatewayToken) + "/" + action + ".xml",
		root:   "transaction",
		fields: []map[string]any{info, fields},
	})
}

// Verify checks a payment method against the gateway without moving money.
func (c *Client) Verify(ctx context.Context, gatewayToken, paymentMethodToken, currency string, info map[string]any) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPost,
		path:   "gateways/" + url.PathEscape(gatewayToken) + "/verify.xml",
		root:   "transaction",
		fields: []map[string]any{info, {
			"paymentMethodToken": paymentMethodToken,
			"currencyCode":       currency,
		}},
	})
}

// Capture settles an authorization. A zero amount captures the full amount
// and sends no body.
func (c *Client) Capture(ctx context.Context, transactionToken string, amount int64, currency string, info map[string]any) (*wire.Record, error) {
	return c.record(ctx, partial("capture", transactionToken, amount, currency, info))
}

// Credit refunds a purchase or capture, in full when amount is zero.
func (c *Client) Credit(ctx context.Context, transactionToken string, amount int64, currency string, info map[string]any) (*wire.Record, error) {
	return c.record(ctx, partial("credit", transactionToken, amount, currency, info))
}

func partial(action, transactionToken string, amount int64, currency string, info map[string]any) request {
	req := request{
		method: http.MethodPost,
		path:   "transactions/" + url.PathEscape(transactionToken) + "/" + action + ".xml",
	}
	if amount == 0 {
		return req
	}
	fields := map[string]any{"amount": amount}
	if currency != "" {
		fields["currencyCode"] = currency
	}
	req.root = "transaction"
	req.fields = []map[string]any{info, fields}
	return req
}

// GeneralCredit sends money to a payment method without a prior purchase.
func (c *Client) GeneralCredit(ctx context.Context, gatewayToken, paymentMethodToken string, amount int64, currency string) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPost,
		path:   "gateways/" + url.PathEscape(gatewayToken) + "/general_credit.xml",
		root:   "transaction",
		fields: []map[string]any{{
			"paymentMethodToken": paymentMethodToken,
			"amount":             amount,
			"currencyCode":       currency,
		}},
	})
}

// Void cancels a transaction that has not settled. info may be nil, in which
// case no body is sent.
func (c *Client) Void(ctx context.Context, transactionToken string, info map[string]any) (*wire.Record, error) {
	req := request{
		method: http.MethodPost,
		path:   "transactions/" + url.PathEscape(transactionToken) + "/void.xml",
	}
	if info != nil {
		req.root = "transaction"
		req.fields = []map[string]any{info}
	}
	return c.record(ctx, req)
}

package spreedly

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/wire"
)

func cardFields(c *card.Card) map[string]any {
	return wire.Merge(c.AddressFields(), c.CanonicalFields())
}

// CreateCreditCard tokenizes a card. Payment methods are only cached until
// RetainPaymentMethod is called. data is forwarded to gateways as is and may
// be nil.
func (c *Client) CreateCreditCard(ctx context.Context, cc *card.Card, data map[string]any) (*wire.Record, error) {
	fields := map[string]any{"creditCard": cardFields(cc)}
	if data != nil {
		fields["data"] = data
	}
	return c.record(ctx, request{
		method: http.MethodPost,
		path:   "payment_methods.xml",
		root:   "payment_method",
		fields: []map[string]any{fields},
	})
}

func (c *Client) RetainPaymentMethod(ctx context.Context, token string) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPut,
		path:   "payment_methods/" + url.PathEscape(token) + "/retain.xml",
	})
}

func (c *Client) ListPaymentMethods(ctx context.Context) ([]any, error) {
	return c.list(ctx, request{method: http.MethodGet, path: "payment_methods.xml"})
}

// RedactPaymentMethod removes the sensitive data of a payment method. When
// removeFromGateway names a gateway token, that gateway is told to drop its
// copy too.
func (c *Client) RedactPaymentMethod(ctx context.Context, token, removeFromGateway string) (*wire.Record, error) {
	req := request{
		method: http.MethodPut,
		path:   "payment_methods/" + url.PathEscape(token) + "/redact.xml",
	}
	if removeFromGateway != "" {
		req.root = "transaction"
		req.fields = []map[string]any{{"removeFromGateway": removeFromGateway}}
	}
	return c.record(ctx, req)
}

func (c *Client) ShowPaymentMethod(ctx context.Context, token string) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodGet,
		path:   "payment_methods/" + url.PathEscape(token) + ".xml",
	})
}

func (c *Client) PaymentMethodTransactions(ctx context.Context, token string) ([]any, error) {
	return c.list(ctx, request{
		method: http.MethodGet,
		path:   "payment_methods/" + url.PathEscape(token) + "/transactions.xml",
	})
}

// UpdateCreditCard updates the non sensitive fields of a stored card. The
// number and verification value are never sent.
func (c *Client) UpdateCreditCard(ctx context.Context, token string, cc *card.Card) (*wire.Record, error) {
	fields := cardFields(cc)
	delete(fields, "number")
	delete(fields, "verificationValue")

	return c.record(ctx, request{
		method: http.MethodPut,
		path:   "payment_methods/" + url.PathEscape(token) + ".xml",
		root:   "payment_method",
		fields: []map[string]any{{"creditCard": fields}},
	})
}

// RecacheVerificationValue stores a fresh CVV on a retained card.
func (c *Client) RecacheVerificationValue(ctx context.Context, token, verificationValue string) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPost,
		path:   "payment_methods/" + url.PathEscape(token) + "/recache.xml",
		root:   "payment_method",
		fields: []map[string]any{{
			"creditCard": map[string]any{"verificationValue": verificationValue},
		}},
	})
}

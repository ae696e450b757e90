package spreedly_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/spreedly"
	"github.com/alovak/cardflow-gateway/wire"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method      string
	path        string
	body        string
	contentType string
	user, pass  string
}

// upstream serves canned responses and remembers the last request.
type upstream struct {
	router *chi.Mux
	last   captured
}

func newUpstream() *upstream {
	return &upstream{router: chi.NewRouter()}
}

func (u *upstream) handle(method, pattern string, status int, body string) {
	u.router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()
		u.last = captured{
			method:      r.Method,
			path:        r.URL.Path,
			body:        string(b),
			contentType: r.Header.Get("Content-Type"),
			user:        user,
			pass:        pass,
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

func (u *upstream) client(t *testing.T) *spreedly.Client {
	srv := httptest.NewServer(u.router)
	t.Cleanup(srv.Close)
	return spreedly.New("env-key", "secret", spreedly.WithEndpoint(srv.URL+"/v1"))
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

const gatewayXML = `<gateway>
  <token>7NTzU3p9L8lCd8Z6FAvC8mxJvPf</token>
  <gateway_type>test</gateway_type>
  <name>Spreedly Test</name>
  <state>retained</state>
  <redacted type="boolean">false</redacted>
  <created_at type="dateTime">2013-07-31T19:46:26Z</created_at>
  <characteristics>
    <supports_purchase type="boolean">true</supports_purchase>
  </characteristics>
  <payment_methods>
    <payment_method>credit_card</payment_method>
  </payment_methods>
</gateway>`

func TestGateways(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPost, "/v1/gateways.xml", http.StatusCreated, gatewayXML)

		gw, err := up.client(t).CreateGateway(ctx, "test", map[string]any{"merchantLogin": "m"})
		require.NoError(t, err)

		require.Equal(t, "7NTzU3p9L8lCd8Z6FAvC8mxJvPf", gw.String("token"))
		require.Equal(t, "test", gw.String("gatewayType"))
		redacted, _ := gw.Get("redacted")
		require.Equal(t, false, redacted)
		pms, _ := gw.Get("paymentMethods")
		require.Equal(t, []any{"credit_card"}, pms)

		require.Equal(t, "env-key", up.last.user)
		require.Equal(t, "secret", up.last.pass)
		require.Equal(t, "application/xml", up.last.contentType)
		require.Equal(t, xmlHeader+`<gateway><gateway_type>test</gateway_type><merchant_login>m</merchant_login></gateway>`, up.last.body)
	})

	t.Run("list with a single gateway", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodGet, "/v1/gateways.xml", http.StatusOK, `<gateways>`+gatewayXML+`</gateways>`)

		list, err := up.client(t).ListGateways(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "Spreedly Test", list[0].(*wire.Record).String("name"))
		require.Empty(t, up.last.body)
	})

	t.Run("list empty", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodGet, "/v1/gateways_options.xml", http.StatusOK, `<gateways type="array"></gateways>`)

		list, err := up.client(t).ListAvailableGateways(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("update, show and redact", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPut, "/v1/gateways/gw1.xml", http.StatusOK, gatewayXML)
		up.handle(http.MethodGet, "/v1/gateways/gw1.xml", http.StatusOK, gatewayXML)
		up.handle(http.MethodPut, "/v1/gateways/gw1/redact.xml", http.StatusOK,
			`<transaction><token>t1</token><transaction_type>RedactGateway</transaction_type><succeeded type="boolean">true</succeeded></transaction>`)
		client := up.client(t)

		_, err := client.UpdateGateway(ctx, "gw1", map[string]any{"password": "p"})
		require.NoError(t, err)
		require.Equal(t, "/v1/gateways/gw1.xml", up.last.path)
		require.Equal(t, xmlHeader+`<gateway><password>p</password></gateway>`, up.last.body)

		_, err = client.ShowGateway(ctx, "gw1")
		require.NoError(t, err)
		require.Equal(t, http.MethodGet, up.last.method)

		txn, err := client.RedactGateway(ctx, "gw1")
		require.NoError(t, err)
		require.Equal(t, "RedactGateway", txn.String("transactionType"))
		require.Empty(t, up.last.body)
	})
}

func TestPaymentMethods(t *testing.T) {
	ctx := context.Background()
	cc := card.New(card.FullFields("Joey", "Jones", "joey@example.com", "4111111111111111", "12", "28", "123"))

	t.Run("create credit card", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPost, "/v1/payment_methods.xml", http.StatusCreated, `<transaction>
  <token>tx1</token>
  <succeeded type="boolean">true</succeeded>
  <payment_method>
    <token>pm1</token>
    <card_type>visa</card_type>
    <last_four_digits>1111</last_four_digits>
  </payment_method>
</transaction>`)

		txn, err := up.client(t).CreateCreditCard(ctx, cc, map[string]any{"note": "vip"})
		require.NoError(t, err)

		pm, _ := txn.Get("paymentMethod")
		require.Equal(t, "pm1", pm.(*wire.Record).String("token"))

		require.Contains(t, up.last.body, `<credit_card>`)
		require.Contains(t, up.last.body, `<number>4111111111111111</number>`)
		require.Contains(t, up.last.body, `<verification_value>123</verification_value>`)
		require.Contains(t, up.last.body, `<year>2028</year>`)
		require.Contains(t, up.last.body, `<data><note>vip</note></data>`)
	})

	t.Run("update drops number and cvv", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPut, "/v1/payment_methods/pm1.xml", http.StatusOK, `<payment_method><token>pm1</token></payment_method>`)

		pm, err := up.client(t).UpdateCreditCard(ctx, "pm1", cc)
		require.NoError(t, err)
		require.Equal(t, "pm1", pm.String("token"))

		require.Contains(t, up.last.body, `<first_name>Joey</first_name>`)
		require.NotContains(t, up.last.body, `<number>`)
		require.NotContains(t, up.last.body, `verification_value`)
	})

	t.Run("redact with and without a gateway", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPut, "/v1/payment_methods/pm1/redact.xml", http.StatusOK, `<transaction><token>tx</token></transaction>`)
		client := up.client(t)

		_, err := client.RedactPaymentMethod(ctx, "pm1", "")
		require.NoError(t, err)
		require.Empty(t, up.last.body)

		_, err = client.RedactPaymentMethod(ctx, "pm1", "gw1")
		require.NoError(t, err)
		require.Equal(t, xmlHeader+`<transaction><remove_from_gateway>gw1</remove_from_gateway></transaction>`, up.last.body)
	})

	t.Run("retain, show, list and recache", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPut, "/v1/payment_methods/pm1/retain.xml", http.StatusOK, `<transaction><token>tx</token></transaction>`)
		up.handle(http.MethodGet, "/v1/payment_methods/pm1.xml", http.StatusOK, `<payment_method><token>pm1</token></payment_method>`)
		up.handle(http.MethodGet, "/v1/payment_methods.xml", http.StatusOK, `<payment_methods>
  <payment_method><token>pm1</token></payment_method>
  <payment_method><token>pm2</token></payment_method>
</payment_methods>`)
		up.handle(http.MethodGet, "/v1/payment_methods/pm1/transactions.xml", http.StatusOK, `<transactions></transactions>`)
		up.handle(http.MethodPost, "/v1/payment_methods/pm1/recache.xml", http.StatusOK, `<transaction><token>tx</token></transaction>`)
		client := up.client(t)

		_, err := client.RetainPaymentMethod(ctx, "pm1")
		require.NoError(t, err)

		pm, err := client.ShowPaymentMethod(ctx, "pm1")
		require.NoError(t, err)
		require.Equal(t, "pm1", pm.String("token"))

		list, err := client.ListPaymentMethods(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)

		txns, err := client.PaymentMethodTransactions(ctx, "pm1")
		require.NoError(t, err)
		require.Empty(t, txns)

		_, err = client.RecacheVerificationValue(ctx, "pm1", "321")
		require.NoError(t, err)
		require.Equal(t, xmlHeader+`<payment_method><credit_card><verification_value>321</verification_value></credit_card></payment_method>`, up.last.body)
	})
}

func TestPayments(t *testing.T) {
	ctx := context.Background()
	txnXML := `<transaction><token>tx1</token><amount type="integer">100</amount><succeeded type="boolean">true</succeeded></transaction>`

	up := newUpstream()
	up.handle(http.MethodPost, "/v1/gateways/{token}/{action}", http.StatusOK, txnXML)
	up.handle(http.MethodPost, "/v1/transactions/{token}/{action}", http.StatusOK, txnXML)
	client := up.client(t)

	t.Run("purchase with a token", func(t *testing.T) {
		txn, err := client.Purchase(ctx, "gw1", spreedly.PaymentMethodToken("pm1"), 100, "USD", map[string]any{"orderId": "o-1", "amount": 1})
		require.NoError(t, err)

		amount, _ := txn.Get("amount")
		require.Equal(t, int64(100), amount)

		require.Equal(t, "/v1/gateways/gw1/purchase.xml", up.last.path)
		require.Equal(t, xmlHeader+`<transaction><amount>100</amount><currency_code>USD</currency_code><order_id>o-1</order_id><payment_method_token>pm1</payment_method_token></transaction>`, up.last.body)
	})

	t.Run("authorize with a card", func(t *testing.T) {
		cc := card.New(card.CompactFields("Joey Jones", "joey@example.com", "378282246310005", "12", "28", "1234"))

		_, err := client.Authorize(ctx, "gw1", spreedly.FromCard(cc), 250, "EUR", nil)
		require.NoError(t, err)
		require.Equal(t, "/v1/gateways/gw1/authorize.xml", up.last.path)
		require.Contains(t, up.last.body, `<card_type>american_express</card_type>`)
		require.Contains(t, up.last.body, `<full_name>Joey Jones</full_name>`)
	})

	t.Run("verify", func(t *testing.T) {
		_, err := client.Verify(ctx, "gw1", "pm1", "USD", nil)
		require.NoError(t, err)
		require.Equal(t, "/v1/gateways/gw1/verify.xml", up.last.path)
		require.Equal(t, xmlHeader+`<transaction><currency_code>USD</currency_code><payment_method_token>pm1</payment_method_token></transaction>`, up.last.body)
	})

	t.Run("full capture sends no body", func(t *testing.T) {
		_, err := client.Capture(ctx, "tx1", 0, "", nil)
		require.NoError(t, err)
		require.Equal(t, "/v1/transactions/tx1/capture.xml", up.last.path)
		require.Empty(t, up.last.body)
		require.Empty(t, up.last.contentType)
	})

	t.Run("partial capture", func(t *testing.T) {
		_, err := client.Capture(ctx, "tx1", 50, "", nil)
		require.NoError(t, err)
		require.Equal(t, xmlHeader+`<transaction><amount>50</amount></transaction>`, up.last.body)
	})

	t.Run("partial credit", func(t *testing.T) {
		_, err := client.Credit(ctx, "tx1", 25, "USD", nil)
		require.NoError(t, err)
		require.Equal(t, "/v1/transactions/tx1/credit.xml", up.last.path)
		require.Equal(t, xmlHeader+`<transaction><amount>25</amount><currency_code>USD</currency_code></transaction>`, up.last.body)
	})

	t.Run("general credit", func(t *testing.T) {
		_, err := client.GeneralCredit(ctx, "gw1", "pm1", 75, "USD")
		require.NoError(t, err)
		require.Equal(t, "/v1/gateways/gw1/general_credit.xml", up.last.path)
	})

	t.Run("void", func(t *testing.T) {
		_, err := client.Void(ctx, "tx1", nil)
		require.NoError(t, err)
		require.Equal(t, "/v1/transactions/tx1/void.xml", up.last.path)
		require.Empty(t, up.last.body)

		_, err = client.Void(ctx, "tx1", map[string]any{"description": "dup"})
		require.NoError(t, err)
		require.Equal(t, xmlHeader+`<transaction><description>dup</description></transaction>`, up.last.body)
	})
}

func TestAPIErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("error element", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodGet, "/v1/gateways/nope.xml", http.StatusNotFound,
			`<errors><error key="errors.gateway_not_found">Unable to find the specified gateway.</error></errors>`)

		_, err := up.client(t).ShowGateway(ctx, "nope")
		require.ErrorIs(t, err, spreedly.ErrAPI)

		var apiErr *spreedly.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		require.Equal(t, "Unable to find the specified gateway.", apiErr.Message())

		rec := apiErr.Payload.(*wire.Record)
		require.Equal(t, "errors.gateway_not_found", rec.String("key"))
	})

	t.Run("several errors", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPost, "/v1/payment_methods.xml", http.StatusUnprocessableEntity, `<errors>
  <error attribute="first_name" key="errors.blank">First name can't be blank</error>
  <error attribute="last_name" key="errors.blank">Last name can't be blank</error>
</errors>`)

		_, err := up.client(t).CreateCreditCard(ctx, card.New(card.Input{}), nil)
		var apiErr *spreedly.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "First name can't be blank; Last name can't be blank", apiErr.Message())
	})

	t.Run("empty body", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodPost, "/v1/transactions/tx1/void.xml", http.StatusInternalServerError, ``)

		_, err := up.client(t).Void(ctx, "tx1", nil)
		var apiErr *spreedly.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Error did not contain a valid response", apiErr.Payload)
		require.NoError(t, apiErr.Unwrap())
	})

	t.Run("body that is not markup", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodGet, "/v1/gateways.xml", http.StatusBadGateway, `bad gateway`)

		_, err := up.client(t).ListGateways(ctx)
		var apiErr *spreedly.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "bad gateway", apiErr.Payload)
		require.ErrorIs(t, err, wire.ErrMalformedWire)
	})

	t.Run("success without the expected element", func(t *testing.T) {
		up := newUpstream()
		up.handle(http.MethodGet, "/v1/gateways/gw1.xml", http.StatusOK, `<gateway></gateway>`)

		_, err := up.client(t).ShowGateway(ctx, "gw1")
		require.ErrorIs(t, err, wire.ErrMalformedWire)
	})
}

func TestClientTimeout(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/v1/gateways.xml", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	client := spreedly.New("k", "s",
		spreedly.WithEndpoint(srv.URL+"/v1/"),
		spreedly.WithHTTPClient(&http.Client{}),
		spreedly.WithTimeout(50*time.Millisecond),
	)

	_, err := client.ListGateways(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, spreedly.ErrAPI)
}

package spreedly

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alovak/cardflow-gateway/wire"
)

// ListAvailableGateways lists the gateway types the API can provision.
func (c *Client) ListAvailableGateways(ctx context.Context) ([]any, error) {
	return c.list(ctx, request{method: http.MethodGet, path: "gateways_options.xml"})
}

// CreateGateway provisions and retains a gateway of the given type.
func (c *Client) CreateGateway(ctx context.Context, gatewayType string, credentials map[string]any) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPost,
		path:   "gateways.xml",
		root:   "gateway",
		fields: []map[string]any{credentials, {"gatewayType": gatewayType}},
	})
}

// ListGateways lists the gateways provisioned in the environment.
func (c *Client) ListGateways(ctx context.Context) ([]any, error) {
	return c.list(ctx, request{method: http.MethodGet, path: "gateways.xml"})
}

// UpdateGateway replaces gateway credentials. A redacted gateway is retained again.
func (c *Client) UpdateGateway(ctx context.Context, token string, credentials map[string]any) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPut,
		path:   "gateways/" + url.PathEscape(token) + ".xml",
		root:   "gateway",
		fields: []map[string]any{credentials},
	})
}

// RedactGateway returns the redact transaction.
func (c *Client) RedactGateway(ctx context.Context, token string) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodPut,
		path:   "gateways/" + url.PathEscape(token) + "/redact.xml",
	})
}

func (c *Client) ShowGateway(ctx context.Context, token string) (*wire.Record, error) {
	return c.record(ctx, request{
		method: http.MethodGet,
		path:   "gateways/" + url.PathEscape(token) + ".xml",
	})
}

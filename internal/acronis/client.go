package acronis

import (
	"context"
	"fmt"
	"net/url"

	"alert-notifier/internal/models"
	"alert-notifier/pkg/restclient"
)

const (
	resourceStatusPath = "api/alert_manager/v1/resource_status"
	resourcePath       = "api/resource_management/v4/resources/"
	clientsPath        = "api/2/clients/"
)

// Client reads alert and resource data from the backup platform.
type Client struct {
	rest     *restclient.Client
	clientID string
}

// NewClient builds a bearer-authenticated client. tokens is consulted on
// every request.
func NewClient(baseURL, clientID, userAgent string, tokens restclient.TokenSource, opts ...restclient.Option) *Client {
	opts = append([]restclient.Option{restclient.WithHeader("User-Agent", userAgent)}, opts...)
	return &Client{
		rest:     restclient.New(baseURL, restclient.BearerAuth{Source: tokens}, opts...),
		clientID: clientID,
	}
}

// REST exposes the underlying verb client.
func (c *Client) REST() *restclient.Client {
	return c.rest
}

// ResourceStatuses lists current resource statuses with their most severe
// alert embedded.
func (c *Client) ResourceStatuses(ctx context.Context) ([]models.ResourceStatus, error) {
	resp, err := c.rest.Get(ctx, resourceStatusPath, url.Values{"embed_alert": {"true"}})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("resource status listing returned %d: %s", resp.StatusCode, resp.Body)
	}
	var list models.ResourceStatusList
	if err := resp.DecodeJSON(&list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// ResourceName looks up the display name of a resource.
func (c *Client) ResourceName(ctx context.Context, id string) (string, error) {
	resp, err := c.rest.Get(ctx, resourcePath+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("resource %s lookup returned %d", id, resp.StatusCode)
	}
	var r models.Resource
	if err := resp.DecodeJSON(&r); err != nil {
		return "", err
	}
	return r.Name, nil
}

// IntegrationRootTenant returns the tenant the API client is registered in.
func (c *Client) IntegrationRootTenant(ctx context.Context) (string, error) {
	resp, err := c.rest.Get(ctx, clientsPath+url.PathEscape(c.clientID), nil)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("client %s lookup returned %d", c.clientID, resp.StatusCode)
	}
	var body struct {
		TenantID string `json:"tenant_id"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return "", err
	}
	return body.TenantID, nil
}

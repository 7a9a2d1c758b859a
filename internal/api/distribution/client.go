package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// APIPath is the push API prefix on the distribution host.
const APIPath = "/service-api/push"

var (
	errHostRequired    = errors.New("api host must be provided")
	errBadHTTPStatus   = errors.New("unexpected http status")
	errReleaseNotFound = errors.New("release missing from response")
)

// Client talks to the distribution service push API.
type Client struct {
	// baseURL is the host plus APIPath.
	baseURL *url.URL
	// token is sent verbatim in the Authorization header.
	token string

	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a client for host, e.g. "https://gamingchannel.com".
func NewClient(host, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errHostRequired
	}

	base, err := url.Parse(strings.TrimRight(host, "/") + APIPath)
	if err != nil {
		return nil, fmt.Errorf("parse api host: %w", err)
	}

	client := &Client{
		baseURL:    base,
		token:      token,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// ReleaseByVersion resolves the release record of packageID at version.
func (c *Client) ReleaseByVersion(ctx context.Context, packageID int64, version string) (*Release, error) {
	var resp releaseResponse

	endpoint := "/releases/by_version/" + strconv.FormatInt(packageID, 10) + "/" + version
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("get release by version: %w", err)
	}

	if resp.Release == nil {
		return nil, fmt.Errorf("package %d version %s: %w", packageID, version, errReleaseNotFound)
	}

	return resp.Release, nil
}

// ListBuilds lists the builds of a release for a game and package.
func (c *Client) ListBuilds(ctx context.Context, releaseID, gameID, packageID int64) ([]*Build, error) {
	var resp buildsResponse

	query := url.Values{
		"game_id":    {strconv.FormatInt(gameID, 10)},
		"package_id": {strconv.FormatInt(packageID, 10)},
	}

	if err := c.get(ctx, "/releases/builds/"+strconv.FormatInt(releaseID, 10), query, &resp); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}

	return resp.Builds.Data, nil
}

// get issues an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	target := *c.baseURL
	target.Path += endpoint
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain a little of the body for the error message.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:mnd // Enough for an error message.

		return fmt.Errorf("%s, %s: %w: %s", target.Path, resp.Status, errBadHTTPStatus, strings.TrimSpace(string(body)))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target.Path, err)
	}

	return nil
}

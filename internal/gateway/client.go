package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	BaseURL string
	APIKey  string
	// StaffToken is the service credential for privileged calls when the
	// request context carries no staff session of its own.
	StaffToken string
	HTTP       *http.Client
}

func NewClient(baseURL, apiKey, staffToken string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		StaffToken: staffToken,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

type listResponse struct {
	Items     []json.RawMessage `json:"items"`
	NextToken string            `json:"nextToken,omitempty"`
}

type itemResponse struct {
	Item json.RawMessage `json:"item"`
}

// List fetches one page of records.
func List[T any](ctx context.Context, c *Client, entity string, opts ListOptions) (Page[T], error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.NextToken != "" {
		q.Set("nextToken", opts.NextToken)
	}
	for field, value := range opts.Filter {
		q.Set("filter."+field, value)
	}

	var page Page[T]
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, entity+"?"+q.Encode(), nil, opts.Auth, &resp); err != nil {
		return page, err
	}
	page.Items = make([]T, 0, len(resp.Items))
	for _, raw := range resp.Items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return Page[T]{}, fmt.Errorf("decode %s record: %w", entity, err)
		}
		page.Items = append(page.Items, v)
	}
	page.NextToken = resp.NextToken
	return page, nil
}

// ListAll walks every page of a filtered list, concatenating results until
// the gateway stops returning a continuation token.
func ListAll[T any](ctx context.Context, c *Client, entity string, filter Filter, pageSize int) ([]T, error) {
	var all []T
	token := ""
	for {
		page, err := List[T](ctx, c, entity, ListOptions{Filter: filter, Limit: pageSize, NextToken: token})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.NextToken == "" {
			return all, nil
		}
		token = page.NextToken
	}
}

// Get fetches one record by id. Absence is not an error: the record pointer
// is nil when the gateway reports no such record.
func Get[T any](ctx context.Context, c *Client, entity, id string, auth AuthMode) (*T, error) {
	var resp itemResponse
	if err := c.do(ctx, http.MethodGet, entity+"/"+url.PathEscape(id), nil, auth, &resp); err != nil {
		return nil, err
	}
	if len(resp.Item) == 0 || string(resp.Item) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(resp.Item, v); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", entity, err)
	}
	return v, nil
}

// Update patches the named fields of one record and returns the updated
// record.
func Update[T any](ctx context.Context, c *Client, entity, id string, fields map[string]any, auth AuthMode) (*T, error) {
	var resp itemResponse
	if err := c.do(ctx, http.MethodPatch, entity+"/"+url.PathEscape(id), fields, auth, &resp); err != nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(resp.Item, v); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", entity, err)
	}
	return v, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, auth AuthMode, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/v1/"+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch auth {
	case AuthStaff:
		req.Header.Set("Authorization", "Bearer "+c.staffToken(ctx))
	default:
		req.Header.Set("X-Api-Key", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("gateway %s %s: %s", method, path, apiErr.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) staffToken(ctx context.Context) string {
	if tok, ok := staffTokenFrom(ctx); ok {
		return tok
	}
	return c.StaffToken
}

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

// ErrEmptyResult means an endpoint that was expected to return at least
// one row returned none.
var ErrEmptyResult = errors.New("expected at least one row")

// RequestError is a non-2xx response from the backend. Message carries the
// backend's own text verbatim so it can be shown to the user unchanged.
type RequestError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Client talks to a Supabase-style backend: REST resource reads under
// /rest/v1, remote procedures under /rest/v1/rpc and edge functions under
// /functions/v1. It holds no state besides its credentials; all mutation
// happens server-side.
type Client struct {
	baseURL string
	anonKey string
	log     *logrus.Logger
	http    *resty.Client
}

func NewClient(baseURL, anonKey string, log *logrus.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		log:     log,
		http:    resty.New().SetTimeout(requestTimeout),
	}
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-Id", uuid.NewString())
		return nil
	})

	if info, err := ParseAnonKey(anonKey); err != nil {
		log.Warnf("could not inspect anon key: %v", err)
	} else {
		log.WithFields(logrus.Fields{
			"project": info.ProjectRef,
			"role":    info.Role,
			"expires": info.ExpiresAt,
		}).Info("backend client configured")
		if info.Expired(time.Now()) {
			log.Warn("anon key is expired, the backend will reject requests")
		}
	}
	return c
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + c.anonKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
}

// Resource performs a filtered read against a REST table endpoint. The
// response is raw JSON, normally an array of rows.
func (c *Client) Resource(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers()).
		SetQueryParams(query).
		Get(c.baseURL + "/rest/v1/" + path)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if err := checkResponse(resp, path); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Insert creates rows on a REST table endpoint and asks the backend to
// return the created representation.
func (c *Client) Insert(ctx context.Context, path string, payload any) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers()).
		SetHeader("Prefer", "return=representation").
		SetBody(payload).
		Post(c.baseURL + "/rest/v1/" + path)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", path, err)
	}
	if err := checkResponse(resp, path); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Rpc invokes a named remote procedure with a JSON argument mapping. The
// body is returned as JSON when it parses, otherwise the raw text is
// wrapped as a JSON string.
func (c *Client) Rpc(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	endpoint := "rpc/" + name
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers()).
		SetBody(args).
		Post(c.baseURL + "/rest/v1/rpc/" + url.PathEscape(name))
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", name, err)
	}
	if err := checkResponse(resp, endpoint); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil, nil
	}
	if json.Valid(body) {
		return json.RawMessage(body), nil
	}
	raw, err := json.Marshal(string(body))
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", name, err)
	}
	return json.RawMessage(raw), nil
}

// Function invokes an edge function with a JSON payload.
func (c *Client) Function(ctx context.Context, name string, payload any) ([]byte, error) {
	endpoint := "functions/" + name
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers()).
		SetBody(payload).
		Post(c.baseURL + "/functions/v1/" + url.PathEscape(name))
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}
	if err := checkResponse(resp, endpoint); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// FirstRow unwraps a set-returning procedure result into its first row.
// Returns nil when the result is empty, a JSON null or an empty array.
func FirstRow(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return trimmed, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode row set: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func checkResponse(resp *resty.Response, endpoint string) error {
	if resp.IsSuccess() {
		return nil
	}
	return &RequestError{
		Status:   resp.StatusCode(),
		Endpoint: endpoint,
		Message:  errorMessage(resp.Body(), endpoint),
	}
}

// errorMessage digs the human-readable message out of an error body:
// the parsed message/error/details field when the body is JSON, the raw
// text otherwise, and a generic fallback when the body is empty.
func errorMessage(body []byte, endpoint string) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, msg := range []string{parsed.Message, parsed.Error, parsed.Details} {
			if msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("request to %s failed", endpoint)
}

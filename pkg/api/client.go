package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-go/pkg/config"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	headerCartToken = "X-Cart-Token"
)

var (
	errBaseURLRequired = errors.New("api base url is required")
	errLoggerRequired  = errors.New("api logger is required")
)

// CredentialSource supplies the identity headers for each request. Guest
// identity is an opaque cart token, authenticated identity a bearer token;
// both are a transport concern owned by the session provider.
type CredentialSource interface {
	BearerToken() string
	CartToken() string
}

// Client talks to the remote commerce API with centralized auth header
// attachment, logging, metrics, and error mapping.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	creds     CredentialSource
	logger    *logger.Logger
	metrics   *metrics.APIMetrics
}

// NewClient initializes the commerce API wrapper and validates its config.
func NewClient(cfg config.APIConfig, logg *logger.Logger, m *metrics.APIMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		logger:    logg,
		metrics:   m,
	}

	logg.Info(context.Background(), "commerce api client initialized")
	return c, nil
}

// SetCredentialSource wires the session provider in after construction.
// The session provider needs the client for login, so the two are built
// first and linked second.
func (c *Client) SetCredentialSource(creds CredentialSource) {
	c.creds = creds
}

// BaseURL reports the configured backend root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// apiError is the backend's error envelope: a human-readable detail plus
// optional field-level validation messages.
type apiError struct {
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	requestID := uuid.NewString()
	started := time.Now()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.metrics.IncFailure(op)
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s request", op))
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		c.metrics.IncFailure(op)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", op))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	c.attachCredentials(req)

	c.log(ctx, "request", op, map[string]any{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	resp, err := c.http.Do(req)
	c.metrics.ObserveDuration(op, time.Since(started))
	if err != nil {
		c.metrics.IncFailure(op)
		c.log(ctx, "error", op, map[string]any{"error": err.Error(), "request_id": requestID})
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, fmt.Sprintf("%s failed", op))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncFailure(op)
		c.log(ctx, "error", op, map[string]any{"error": err.Error(), "request_id": requestID})
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, fmt.Sprintf("read %s response", op))
	}

	if resp.StatusCode >= 400 {
		c.metrics.IncFailure(op)
		domainErr := c.mapStatusError(op, resp.StatusCode, raw)
		c.log(ctx, "error", op, map[string]any{
			"error":      domainErr.Error(),
			"status":     resp.StatusCode,
			"request_id": requestID,
		})
		return domainErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.metrics.IncFailure(op)
			return pkgerrors.Wrap(pkgerrors.CodeTransport, err, fmt.Sprintf("decode %s response", op))
		}
	}

	c.metrics.IncSuccess(op)
	c.log(ctx, "response", op, map[string]any{
		"status":     resp.StatusCode,
		"request_id": requestID,
	})
	return nil
}

func (c *Client) attachCredentials(req *http.Request) {
	if c.creds == nil {
		return
	}
	if bearer := c.creds.BearerToken(); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
		return
	}
	if token := c.creds.CartToken(); token != "" {
		req.Header.Set(headerCartToken, token)
	}
}

func (c *Client) mapStatusError(op string, status int, raw []byte) error {
	var envelope apiError
	_ = json.Unmarshal(raw, &envelope)

	message := envelope.Detail
	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", op, status)
	}

	domainErr := pkgerrors.New(domainCodeForStatus(status), message)
	if len(envelope.Errors) > 0 {
		domainErr = domainErr.WithDetails(envelope.Errors)
	}
	return domainErr
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeTransport
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("commerce api %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("commerce api %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"password", "token", "secret", "email", "phone", "address"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

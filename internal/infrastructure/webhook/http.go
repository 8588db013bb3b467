package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

// SignatureHeader carries hex(HMAC-SHA256(secret, timestamp + "." + body)).
const (
	SignatureHeader = "X-Crewrelief-Signature"
	TimestampHeader = "X-Crewrelief-Timestamp"
)

// HTTPEmitter POSTs audit events as JSON to a single endpoint.
type HTTPEmitter struct {
	client  *http.Client
	url     string
	secret  []byte
	headers map[string]string
	now     func() time.Time
}

// HTTPEmitterOption configures HTTPEmitter.
type HTTPEmitterOption func(*HTTPEmitter)

// WithClient sets the HTTP client (default: 10s timeout).
func WithClient(c *http.Client) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		e.client = c
	}
}

// WithHeader sets a header sent on every request.
func WithHeader(key, value string) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		e.headers[key] = value
	}
}

// WithSigningSecret signs every body so receivers can reject forged events.
func WithSigningSecret(secret string) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		if secret != "" {
			e.secret = []byte(secret)
		}
	}
}

func NewHTTPEmitter(url string, opts ...HTTPEmitterOption) *HTTPEmitter {
	e := &HTTPEmitter{
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     url,
		headers: make(map[string]string),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPEmitter) Emit(ctx context.Context, event ports.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}
	if e.secret != nil {
		ts := strconv.FormatInt(e.now().Unix(), 10)
		req.Header.Set(TimestampHeader, ts)
		req.Header.Set(SignatureHeader, Sign(e.secret, ts, body))
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: endpoint returned %d", event.Event, resp.StatusCode)
	}
	return nil
}

// Sign computes the signature header value for body sent at timestamp ts.
func Sign(secret []byte, ts string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ ports.WebhookEmitter = (*HTTPEmitter)(nil)

// userdirはUser DirectoryサービスへのHTTPクライアント。
// リトライはしない。通信失敗・タイムアウト・5xxはすべてErrUpstreamUnavailable。
package userdir

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"divops/internal/domain/model"
	"divops/internal/metrics"
	"divops/internal/repository"
)

const (
	pathRegister = "/internal/users"
	pathVerify   = "/internal/auth/verify"
	pathFind     = "/internal/users/"
)

// レスポンスbodyの上限
const maxBodyBytes = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
}

var _ repository.UserDirectory = (*Client)(nil)

// timeout <= 0 はエラー
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("userdir: invalid base url %q", baseURL)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("userdir: timeout must be positive")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Register(ctx context.Context, in model.Registration) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, "register", http.MethodPost, pathRegister, in, &out)
	return out, err
}

func (c *Client) Verify(ctx context.Context, email string, password string) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, "verify", http.MethodPost, pathVerify, verifyRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Find(ctx context.Context, key string) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, "find", http.MethodGet, pathFind+url.PathEscape(key), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, call, method, path string, body any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamCall(call, callResult(err), time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("userdir.%s: encode: %w", call, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("userdir.%s: %w", call, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", repository.ErrUpstreamUnavailable, call, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %v", repository.ErrUpstreamUnavailable, call, err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: %s: decode: %v", repository.ErrUpstreamUnavailable, call, err)
		}
		return nil
	}

	return statusError(call, res.StatusCode, payload)
}

// ステータスをrepositoryのエラーに変換
func statusError(call string, status int, payload []byte) error {
	var sentinel error
	switch {
	case status == http.StatusConflict:
		sentinel = repository.ErrEmailAlreadyExists
	case status == http.StatusUnauthorized:
		sentinel = repository.ErrInvalidCredentials
	case status == http.StatusNotFound:
		sentinel = repository.ErrUserNotFound
	case status == http.StatusBadRequest:
		sentinel = repository.ErrInvalidInput
	default:
		sentinel = repository.ErrUpstreamUnavailable
	}

	var body errorResponse
	if json.Unmarshal(payload, &body) == nil && body.Error != "" {
		return fmt.Errorf("%w: %s: %d %s", sentinel, call, status, body.Error)
	}
	return fmt.Errorf("%w: %s: %d", sentinel, call, status)
}

func callResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrUpstreamUnavailable):
		return "unavailable"
	default:
		return "rejected"
	}
}

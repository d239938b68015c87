package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/honeycarbs/hirepipe/pkg/logging"
)

const (
	defaultBasePath = "/api"
	maxErrorBody    = 64 << 10
)

// User-facing interception messages
const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgForbidden      = "You do not have permission to perform this action."
	MsgServerError    = "Server error. Please try again later."
	MsgValidation     = "Validation error"
	MsgNetworkError   = "Network error. Please check your connection."
)

// NewClient instantiates a backend client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base url is required")
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", cfg.BaseURL)
	}

	basePath := cfg.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}
	base.Path = path.Join("/", base.Path, basePath)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    limiter,
		tokens:     cfg.Tokens,
		session:    cfg.Session,
		notifier:   cfg.Notifier,
		logger:     logger,
	}, nil
}

// Do sends req and decodes a JSON reply into out (skipped when out is nil)
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

// Send issues req. Any non-2xx reply becomes an *Error after interception.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("api: client is nil")
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("api: rate limiter: %w", err)
		}
	}

	log := c.logger.With("method", httpReq.Method, "path", req.Path, "request_id", httpReq.Header.Get("X-Request-ID"))
	log.Debug("sending request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			// caller went away; nobody is left to notify
			return nil, ctx.Err()
		}
		apiErr := &Error{Kind: KindNetwork, Method: httpReq.Method, Path: req.Path, Err: err}
		log.Warn("request failed without response", "err", err)
		c.intercept(ctx, apiErr, false)
		return nil, apiErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		raw, messages, list := parseDetail(body)
		apiErr := &Error{
			Kind:       kindForStatus(resp.StatusCode),
			Method:     httpReq.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Detail:     raw,
			Messages:   messages,
		}
		log.Warn("request rejected", "status", resp.StatusCode, "kind", apiErr.Kind.String())
		c.intercept(ctx, apiErr, list)
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		apiErr := &Error{Kind: KindNetwork, Method: httpReq.Method, Path: req.Path, StatusCode: resp.StatusCode, Err: err}
		c.intercept(ctx, apiErr, false)
		return nil, apiErr
	}

	log.Debug("request completed", "status", resp.StatusCode)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// intercept applies the cross-cutting side effects of a failed call, once.
func (c *Client) intercept(ctx context.Context, apiErr *Error, detailList bool) {
	switch apiErr.Kind {
	case KindUnauthorized:
		if c.session != nil {
			c.session.Expire(ctx)
		}
		c.notify(ctx, MsgSessionExpired)
	case KindForbidden:
		c.notify(ctx, MsgForbidden)
	case KindServer:
		c.notify(ctx, MsgServerError)
	case KindValidation:
		switch {
		case detailList:
			for _, msg := range apiErr.Messages {
				c.notify(ctx, msg)
			}
		case len(apiErr.Messages) > 0:
			c.notify(ctx, apiErr.Messages[0])
		default:
			c.notify(ctx, MsgValidation)
		}
	case KindNetwork:
		c.notify(ctx, MsgNetworkError)
	}
}

func (c *Client) notify(ctx context.Context, msg string) {
	if c.notifier != nil {
		c.notifier.Error(ctx, msg)
	}
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := *c.baseURL
	u.Path = joinPath(c.baseURL.Path, req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := encodeForm(req.Form)
		if err != nil {
			return nil, fmt.Errorf("api: encode form: %w", err)
		}
		body, contentType = buf, ct
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("api: encode body: %w", err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("failed to read session token", "err", err)
		} else if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return httpReq, nil
}

// joinPath keeps a trailing slash on p, the backend routes collections as "/candidates/"
func joinPath(base, p string) string {
	joined := path.Join(base, p)
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}

func encodeForm(form *Form) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range form.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range form.Files {
		if f.Content == nil {
			return nil, "", errors.New("file " + f.Field + " has no content")
		}
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

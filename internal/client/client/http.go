package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

const (
	defaultTimeout   = 15 * time.Second
	maxErrorBodySize = 1 << 20
)

// Config holds the endpoints of the remote services.
type Config struct {
	// DocumentsBaseURL is the documents root,
	// e.g. https://firestore.googleapis.com/v1/projects/p/databases/(default)/documents.
	DocumentsBaseURL string
	// AuthBaseURL is the identity provider root, e.g. https://identitytoolkit.googleapis.com/v1.
	AuthBaseURL string
	APIKey      string
	// Timeout bounds every single request. Zero means 15s.
	Timeout time.Duration
	// HTTPClient defaults to a new http.Client.
	HTTPClient *http.Client
}

// HTTPClient talks to the document store and the identity provider over REST.
type HTTPClient struct {
	cfg    Config
	http   *http.Client
	logger logging.Logger

	mu      sync.RWMutex
	idToken string
}

var (
	_ Documents = (*HTTPClient)(nil)
	_ Auth      = (*HTTPClient)(nil)
)

func NewHTTPClient(cfg Config, logger logging.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	cfg.DocumentsBaseURL = strings.TrimRight(cfg.DocumentsBaseURL, "/")
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	return &HTTPClient{cfg: cfg, http: hc, logger: logger}
}

func (c *HTTPClient) SetIDToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idToken = token
}

type idTokenKey struct{}

// WithIDToken makes document requests made with ctx carry token instead of
// the one set by SetIDToken. Used to act as a user before the session exists.
func WithIDToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, idTokenKey{}, token)
}

func (c *HTTPClient) token(ctx context.Context) string {
	if tok, ok := ctx.Value(idTokenKey{}).(string); ok {
		return tok
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idToken
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type documentBody struct {
	Fields map[string]docstore.Value `json:"fields"`
}

func (c *HTTPClient) documentURL(collection, id string, query url.Values) string {
	u := c.cfg.DocumentsBaseURL + "/" + url.PathEscape(collection)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *HTTPClient) authURL(method string) string {
	q := url.Values{}
	if c.cfg.APIKey != "" {
		q.Set("key", c.cfg.APIKey)
	}
	u := c.cfg.AuthBaseURL + "/accounts:" + method
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends one JSON request. out may be nil when the body is not needed.
func (c *HTTPClient) do(ctx context.Context, op, method, rawURL string, body, out any, bearer bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(ctx); bearer && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	log := c.logger.With("op", op, "request_id", requestID)
	log.Debug(ctx, "request", "method", method)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error(ctx, "request failed", "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &TransportError{Op: op, StatusCode: resp.StatusCode}
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if json.Unmarshal(raw, &eb) == nil {
			te.Message = eb.Error.Message
		}
		log.Warn(ctx, "request rejected", "status", resp.StatusCode, "message", te.Message)
		return te
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error(ctx, "bad response body", "error", err)
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *HTTPClient) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	var docs []docstore.Document
	q := url.Values{}
	for {
		var page docstore.ListResponse
		if err := c.do(ctx, "list "+collection, http.MethodGet, c.documentURL(collection, "", q), nil, &page, true); err != nil {
			return nil, err
		}
		docs = append(docs, page.Documents...)
		if page.NextPageToken == "" {
			return docs, nil
		}
		q.Set("pageToken", page.NextPageToken)
	}
}

func (c *HTTPClient) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var doc docstore.Document
	op := "get " + collection + "/" + id
	if err := c.do(ctx, op, http.MethodGet, c.documentURL(collection, id, nil), nil, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) Create(ctx context.Context, collection string, fields map[string]docstore.Value) (*docstore.Document, error) {
	var doc docstore.Document
	body := documentBody{Fields: fields}
	if err := c.do(ctx, "create "+collection, http.MethodPost, c.documentURL(collection, "", nil), body, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) Patch(ctx context.Context, collection, id string, fields map[string]docstore.Value, mask []string) (*docstore.Document, error) {
	q := url.Values{}
	for _, f := range mask {
		q.Add("updateMask.fieldPaths", f)
	}
	var doc docstore.Document
	body := documentBody{Fields: fields}
	op := "patch " + collection + "/" + id
	if err := c.do(ctx, op, http.MethodPatch, c.documentURL(collection, id, q), body, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) Delete(ctx context.Context, collection, id string) error {
	op := "delete " + collection + "/" + id
	return c.do(ctx, op, http.MethodDelete, c.documentURL(collection, id, nil), nil, nil, true)
}

type credentialsBody struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := credentialsBody{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.do(ctx, "sign in", http.MethodPost, c.authURL("signInWithPassword"), body, &res, false); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := credentialsBody{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.do(ctx, "sign up", http.MethodPost, c.authURL("signUp"), body, &res, false); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SendPasswordReset(ctx context.Context, email string) error {
	body := struct {
		RequestType string `json:"requestType"`
		Email       string `json:"email"`
	}{RequestType: "PASSWORD_RESET", Email: email}
	return c.do(ctx, "send password reset", http.MethodPost, c.authURL("sendOobCode"), body, nil, false)
}

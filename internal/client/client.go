// Package client implements the authenticated attendance API client. It owns
// the credential record and transparently maintains a valid bearer-token
// session: proactive refresh shortly before expiry, single-flight refresh
// under concurrency, and one reactive refresh-and-retry on an unexpected 401.
package client

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
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/attendly/attendly-cli/internal/errs"
	"github.com/attendly/attendly-cli/internal/model"
	"github.com/attendly/attendly-cli/internal/session"
)

const (
	refreshPath = "/auth/refresh"

	// refreshSkew is how long before expiry a token counts as expiring soon.
	refreshSkew = 5 * time.Minute

	defaultTimeout = 30 * time.Second

	// defaultTokenTTL is assumed when neither the payload nor the token
	// itself reveals an expiry.
	defaultTokenTTL = 15 * time.Minute

	// authFailedMsg is the terminal message for a 401 that survives refresh.
	authFailedMsg = "Authentication failed. Please log in again."
)

// Client mediates every call to the backend. Construct with New; the zero
// value is not usable.
type Client struct {
	baseURL string
	timeout time.Duration
	httpc   *http.Client
	store   session.Store
	log     *zap.Logger

	mu   sync.Mutex
	sess *session.Session

	refreshing singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport (its own timeout wins).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpc = h } }

// WithLogger attaches a logger; the default is a nop.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// New builds a client and loads the persisted session. An incomplete or
// undecodable record is cleared and the client starts logged out.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		store:   store,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: c.timeout}
	}

	sess, err := store.Load()
	switch {
	case err == nil:
		c.sess = sess
	case errors.Is(err, errs.ErrCorruptSession):
		c.log.Warn("discarding corrupt session record")
		_ = store.Clear()
	case errors.Is(err, errs.ErrNoSession):
		// logged out
	default:
		c.log.Warn("session load failed", zap.Error(err))
	}
	return c
}

// Session returns a copy of the current session, or nil when logged out.
// Callers observe the session; only the client mutates it.
func (c *Client) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	cpy := *c.sess
	return &cpy
}

// Authenticated reports whether a session is currently held.
func (c *Client) Authenticated() bool { return c.Session() != nil }

func (c *Client) setSession(s session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = &s
	if err := c.store.Save(&s); err != nil {
		c.log.Warn("session save failed", zap.Error(err))
	}
}

func (c *Client) setUser(u model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return
	}
	c.sess.User = u
	if err := c.store.Save(c.sess); err != nil {
		c.log.Warn("session save failed", zap.Error(err))
	}
}

func (c *Client) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = nil
	if err := c.store.Clear(); err != nil {
		c.log.Warn("session clear failed", zap.Error(err))
	}
}

// call describes one backend request.
type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string // defaults to application/json; multipart sets its own
	bearer      string // explicit bearer (refresh sends the refresh token)
	noAuth      bool   // login: no bearer, no refresh machinery
}

// reply is the transport-level outcome of a call.
type reply struct {
	status int
	body   []byte
	isJSON bool
}

// send performs one HTTP round trip with no token orchestration.
func (c *Client) send(ctx context.Context, cl call) (reply, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, bytes.NewReader(cl.body))
	if err != nil {
		return reply{}, err
	}

	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := cl.bearer
	if bearer == "" && !cl.noAuth {
		if s := c.Session(); s != nil {
			bearer = s.AccessToken
		}
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if id, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-Id", id.String())
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, err
	}
	ct := resp.Header.Get("Content-Type")
	return reply{
		status: resp.StatusCode,
		body:   b,
		isJSON: strings.Contains(ct, "application/json"),
	}, nil
}

// exec runs one request through the full token pipeline.
func exec[T any](ctx context.Context, c *Client, cl call) Result[T] {
	return run[T](ctx, c, cl, false)
}

func run[T any](ctx context.Context, c *Client, cl call, isRetry bool) Result[T] {
	if !isRetry && !cl.noAuth && cl.path != refreshPath {
		if s := c.Session(); s.ExpiresWithin(refreshSkew) {
			// Best effort: on failure the request still goes out and the
			// server stays the authority.
			if err := c.refresh(ctx); err != nil {
				c.log.Debug("proactive refresh failed", zap.Error(err))
			}
		}
	}

	rep, err := c.send(ctx, cl)
	if err != nil {
		return errResult[T](http.StatusInternalServerError, err.Error())
	}

	if rep.status == http.StatusUnauthorized && !isRetry && !cl.noAuth && cl.path != refreshPath {
		if err := c.refresh(ctx); err != nil {
			c.clearSession()
			return errResult[T](http.StatusUnauthorized, authFailedMsg)
		}
		return run[T](ctx, c, cl, true)
	}

	if rep.status < 200 || rep.status > 299 {
		return errResult[T](rep.status, errorMessage(rep))
	}

	var v T
	if len(rep.body) > 0 && rep.isJSON {
		if err := json.Unmarshal(rep.body, &v); err != nil {
			return errResult[T](http.StatusInternalServerError, "decode response: "+err.Error())
		}
	}
	return okResult(rep.status, v)
}

// errorMessage extracts the backend-supplied message when the error body is
// JSON, else falls back to a generic message carrying the status code.
func errorMessage(rep reply) string {
	if rep.isJSON {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(rep.body, &e) == nil && e.Message != "" {
			return e.Message
		}
	}
	return fmt.Sprintf("HTTP error: status %d", rep.status)
}

// refresh collapses concurrent refresh attempts into a single in-flight call;
// every waiter observes the outcome of that one call. The in-flight call runs
// under the first caller's context.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshing.Do("refresh", func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

// doRefresh exchanges the refresh token for a new token pair. Any failure
// (transport, non-2xx, malformed payload) invalidates the stored session.
func (c *Client) doRefresh(ctx context.Context) error {
	s := c.Session()
	if s == nil || s.RefreshToken == "" {
		return errs.ErrNoSession
	}

	rep, err := c.send(ctx, call{method: http.MethodPost, path: refreshPath, bearer: s.RefreshToken})
	if err != nil {
		c.clearSession()
		return err
	}
	if rep.status < 200 || rep.status > 299 {
		c.clearSession()
		return fmt.Errorf("%w: refresh status %d", errs.ErrUnauthorized, rep.status)
	}

	var rr model.RefreshResponse
	if err := json.Unmarshal(rep.body, &rr); err != nil ||
		rr.Token == "" || rr.RefreshToken == "" || rr.TokenExpires == 0 {
		c.clearSession()
		return errs.ErrMalformedRefresh
	}

	c.mu.Lock()
	var user model.User
	if c.sess != nil {
		user = c.sess.User
	}
	ns := &session.Session{
		AccessToken:  rr.Token,
		RefreshToken: rr.RefreshToken,
		ExpiresAt:    time.UnixMilli(rr.TokenExpires),
		User:         user,
	}
	c.sess = ns
	if err := c.store.Save(ns); err != nil {
		c.log.Warn("session save failed", zap.Error(err))
	}
	c.mu.Unlock()

	c.log.Debug("session refreshed", zap.Time("expiresAt", ns.ExpiresAt))
	return nil
}

// internal/api/client.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config is the transport config for Client.
type Config struct {
	BaseURL           string
	Keys              []string
	Timeout           time.Duration
	RequestsPerMinute int

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements Fetcher over the game's REST API.
// One limiter is shared by every monitor; keys rotate per request.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	mu   sync.Mutex
	keys []apiKey
	next int
}

type apiKey struct {
	value    string
	disabled bool
}

// Key-level error codes: the key itself is unusable until an operator acts.
var keyErrorCodes = map[uint16]bool{
	2:  true, // incorrect key
	10: true, // key owner in federal jail
	13: true, // key disabled due to owner inactivity
	18: true, // key paused by owner
}

const maxBodyBytes = 8 << 20

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api: base url required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", cfg.BaseURL, err)
	}
	if len(cfg.Keys) == 0 {
		return nil, errors.New("api: at least one key required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]apiKey, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, apiKey{value: k})
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("api: at least one non-empty key required")
	}

	every := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(rate.Every(every), 1),
		logger:  logger,
		keys:    keys,
	}, nil
}

// Fetch performs one call. It never returns a Go error; failures are
// folded into Result so callers only see the tri-value contract.
func (c *Client) Fetch(ctx context.Context, req Request) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Status: "rate limit wait: " + err.Error()}
	}

	idx, key, ok := c.pickKey()
	if !ok {
		return Result{Status: "no usable api key", Code: 2}
	}

	endpoint := c.buildURL(req, key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Status: "build request: " + err.Error()}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{Status: "request: " + redact(err.Error(), key)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{Status: "read body: " + err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Status: fmt.Sprintf("http status %d", resp.StatusCode)}
	}

	var envelope struct {
		Error *struct {
			Code    uint16 `json:"code"`
			Message string `json:"error"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Result{Status: "decode: " + err.Error()}
	}
	if envelope.Error != nil {
		if keyErrorCodes[envelope.Error.Code] {
			c.disableKey(idx)
			c.logger.Warn("api key disabled",
				"key_index", idx,
				"code", envelope.Error.Code,
				"reason", envelope.Error.Message,
			)
		}
		return Result{
			Status: envelope.Error.Message,
			Code:   envelope.Error.Code,
		}
	}

	return Result{OK: true, Status: "ok", Payload: body}
}

// UsableKeys reports how many keys are still enabled.
func (c *Client) UsableKeys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range c.keys {
		if !k.disabled {
			n++
		}
	}
	return n
}

func (c *Client) pickKey() (int, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for range c.keys {
		i := c.next % len(c.keys)
		c.next = (c.next + 1) % len(c.keys)
		if !c.keys[i].disabled {
			return i, c.keys[i].value, true
		}
	}
	return 0, "", false
}

func (c *Client) disableKey(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= 0 && i < len(c.keys) {
		c.keys[i].disabled = true
	}
}

func (c *Client) buildURL(req Request, key string) string {
	path := "/" + url.PathEscape(req.Section) + "/"
	if req.ID != "" {
		path += url.PathEscape(req.ID)
	}

	q := url.Values{}
	if len(req.Selections) > 0 {
		q.Set("selections", strings.Join(req.Selections, ","))
	}
	if req.From > 0 {
		q.Set("from", strconv.FormatInt(req.From, 10))
	}
	if req.To > 0 {
		q.Set("to", strconv.FormatInt(req.To, 10))
	}
	q.Set("comment", "faction-relay")
	q.Set("key", key)

	return c.baseURL + path + "?" + q.Encode()
}

// redact strips the key from transport errors, which echo the URL.
func redact(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, "***")
}

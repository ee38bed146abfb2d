// Package fetch is the data access adapter for the Rick & Morty character API.
//
// Every operation returns either decoded records or an *Error whose Kind
// places the failure in a fixed taxonomy. Nothing is retried here; the
// presentation layer offers a manual retry for transient kinds.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/otel"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://rickandmortyapi.com/api"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	userAgent = "rickdex/0.3 (+https://github.com/abelbrown/rickdex)"

	// maxBody caps how much of a response is read. The largest list page is ~20KB.
	maxBody = 4 << 20
)

// Cache stores raw response bodies keyed by request URL.
// Implementations decide freshness; a stale entry is a miss.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, body []byte) error
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	MaxID   int

	// RequestsPerSecond throttles outgoing requests. 0 disables throttling.
	RequestsPerSecond float64

	Cache      Cache
	Events     *otel.Logger
	HTTPClient *http.Client
}

// Client talks to the character API.
// Safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter // nil when unthrottled
	cache   Cache
	events  *otel.Logger
	group   singleflight.Group
	maxID   atomic.Int64
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxID <= 0 {
		opts.MaxID = character.DefaultMaxID
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		base:   strings.TrimRight(opts.BaseURL, "/"),
		http:   hc,
		cache:  opts.Cache,
		events: opts.Events,
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	c.maxID.Store(int64(opts.MaxID))
	return c
}

// MaxID is the highest id the client accepts.
func (c *Client) MaxID() int {
	return int(c.maxID.Load())
}

// SetMaxID raises or lowers the accepted id range, usually from the total
// count reported by an unfiltered list page. Values below 1 are ignored.
func (c *Client) SetMaxID(n int) {
	if n >= 1 {
		c.maxID.Store(int64(n))
	}
}

// List fetches one page of characters matching f.
func (c *Client) List(ctx context.Context, page int, f character.Filters) (character.Page, error) {
	if page < 1 {
		return character.Page{}, Invalid("list", "page must be at least 1, got %d", page)
	}
	var p character.Page
	if err := c.getJSON(ctx, "list", c.listURL(page, f), &p); err != nil {
		return character.Page{}, err
	}
	return p, nil
}

// SearchByName fetches the given page of characters whose name contains name.
// The API answers 404 when nothing matches.
func (c *Client) SearchByName(ctx context.Context, name string, page int) (character.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return character.Page{}, Invalid("search", "search text is empty")
	}
	if page < 1 {
		page = 1
	}
	var p character.Page
	if err := c.getJSON(ctx, "search", c.listURL(page, character.Filters{Name: name}), &p); err != nil {
		return character.Page{}, err
	}
	return p, nil
}

// Get fetches a single character. Ids outside 1..MaxID fail without a request.
func (c *Client) Get(ctx context.Context, id int) (character.Character, error) {
	if max := c.MaxID(); !character.ValidID(id, max) {
		return character.Character{}, Invalid("get", "character id must be between 1 and %d, got %d", max, id)
	}
	var ch character.Character
	if err := c.getJSON(ctx, "get", c.URL(character.Filters{}, id), &ch); err != nil {
		return character.Character{}, err
	}
	if ch.ID != id {
		return character.Character{}, &Error{Kind: KindUnexpected, Op: "get", Err: fmt.Errorf("asked for character %d, got %d", id, ch.ID)}
	}
	if err := ch.Validate(c.MaxID()); err != nil {
		return character.Character{}, &Error{Kind: KindUnexpected, Op: "get", Err: err}
	}
	return ch, nil
}

// GetMany fetches several characters in one request. Results follow the
// order the API returns them in.
func (c *Client) GetMany(ctx context.Context, ids []int) ([]character.Character, error) {
	if len(ids) == 0 {
		return nil, Invalid("get_many", "no ids given")
	}
	max := c.MaxID()
	parts := make([]string, len(ids))
	for i, id := range ids {
		if !character.ValidID(id, max) {
			return nil, Invalid("get_many", "character id must be between 1 and %d, got %d", max, id)
		}
		parts[i] = strconv.Itoa(id)
	}

	u := c.base + "/character/" + strings.Join(parts, ",")

	// A single id returns an object instead of an array.
	if len(ids) == 1 {
		var ch character.Character
		if err := c.getJSON(ctx, "get_many", u, &ch); err != nil {
			return nil, err
		}
		return []character.Character{ch}, nil
	}
	var out []character.Character
	if err := c.getJSON(ctx, "get_many", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// URL builds the request URL for a character id, or for the filtered list
// when id is 0. Used for display as well as for requests.
func (c *Client) URL(f character.Filters, id int) string {
	if id > 0 {
		return c.base + "/character/" + strconv.Itoa(id)
	}
	if q := f.Query(0); q != "" {
		return c.base + "/character/?" + q
	}
	return c.base + "/character"
}

func (c *Client) listURL(page int, f character.Filters) string {
	return c.base + "/character/?" + f.Query(page)
}

// getJSON performs a GET through the cache and the singleflight group and
// decodes the body into out.
func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	body, err := c.get(ctx, op, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.events.Error(otel.KindFetchError, "fetch", err)
		return &Error{Kind: KindUnexpected, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, u string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindCacheHit, Comp: "fetch", URL: u})
			return body, nil
		}
	}

	// The shared call outlives any one caller; each caller only stops waiting
	// when its own ctx ends. The http.Client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(u, func() (any, error) {
		return c.do(shared, op, u)
	})
	select {
	case <-ctx.Done():
		return nil, classifyTransport(op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			// A shared call reports the op of whoever started it.
			if fe, ok := res.Err.(*Error); ok && fe.Op != op {
				cp := *fe
				cp.Op = op
				return nil, &cp
			}
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) do(ctx context.Context, op, u string) ([]byte, error) {
	start := time.Now()
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "fetch", URL: u})

	fail := func(e *Error) ([]byte, error) {
		c.events.Emit(otel.Event{
			Level:  otel.LevelWarn,
			Kind:   otel.KindFetchError,
			Comp:   "fetch",
			URL:    u,
			Status: e.Status,
			Dur:    time.Since(start),
			Err:    e.Error(),
		})
		return nil, e
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(classifyTransport(op, fmt.Errorf("rate limiter: %w", err)))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fail(&Error{Kind: KindUnexpected, Op: op, Err: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(classifyTransport(op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fail(classifyStatus(op, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(classifyTransport(op, fmt.Errorf("read body: %w", err)))
	}

	if c.cache != nil {
		if err := c.cache.Put(u, body); err != nil {
			c.events.Error(otel.KindFetchError, "fetch", fmt.Errorf("cache put: %w", err))
		}
	}

	c.events.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindFetchComplete,
		Comp:   "fetch",
		URL:    u,
		Status: resp.StatusCode,
		Dur:    time.Since(start),
		Count:  len(body),
	})
	return body, nil
}

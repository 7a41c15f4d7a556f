package tradebox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"TazeAI/internal/domain/models"
	drepo "TazeAI/internal/domain/repository"
	xhttp "TazeAI/pkg/http"
	"TazeAI/pkg/logger"
)

// Endpoint names, also used as metric labels.
const (
	EndpointInfo         = "info"
	EndpointIntraday     = "intraday"
	EndpointHistories    = "histories"
	EndpointFundamentals = "fundamentals"
)

// Config holds the provider connection settings.
type Config struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
}

// Client implements a MarketDataProvider backed by the Tradebox REST API.
type Client struct {
	baseURL string
	http    *xhttp.Client
	limiter *rate.Limiter
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter throttles every endpoint request through l.
func WithLimiter(l *rate.Limiter) Option { return func(c *Client) { c.limiter = l } }

// WithMetrics records failed endpoint requests.
func WithMetrics(m drepo.Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithClock overrides the bundle fetch timestamp source.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New creates a Tradebox provider client.
func New(cfg Config, log *logger.Logger, opts ...xhttp.ClientOption) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	httpOpts := append([]xhttp.ClientOption{
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithBasicAuth(cfg.User, cfg.Password),
	}, opts...)
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    xhttp.NewClient(httpOpts...),
		log:     log,
		now:     time.Now,
	}
}

// With applies options after construction.
func (c *Client) With(opts ...Option) *Client {
	for _, o := range opts {
		o(c)
	}
	return c
}

// RangeParam converts a history window in days into the provider's month range.
func RangeParam(historyDays int) string {
	return fmt.Sprintf("%dmo", max(1, historyDays/30))
}

type endpointRequest struct {
	name  string
	path  string
	query map[string][]string
	dest  **models.Envelope
}

// FetchBundle requests the four endpoints of symbol concurrently. A failed
// request, a non-2xx response or an undecodable body leaves that member nil;
// the bundle itself is always returned unless ctx is done.
func (c *Client) FetchBundle(ctx context.Context, symbol string, historyDays int) (*models.ProviderBundle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("tradebox: empty symbol")
	}
	b := &models.ProviderBundle{Symbol: symbol, FetchedAt: c.now().UTC()}
	esc := url.PathEscape(symbol)

	reqs := []endpointRequest{
		{name: EndpointInfo, path: "/assetInformation/" + esc, dest: &b.Info},
		{name: EndpointIntraday, path: "/assetIntraday/" + esc, dest: &b.Intraday},
		{name: EndpointHistories, path: "/assetHistories/" + esc, dest: &b.Histories,
			query: map[string][]string{"range": {RangeParam(historyDays)}, "interval": {"1d"}}},
		{name: EndpointFundamentals, path: "/assetFundamentals/" + esc, dest: &b.Fundamentals},
	}

	var wg sync.WaitGroup
	for _, r := range reqs {
		wg.Add(1)
		go func(r endpointRequest) {
			defer wg.Done()
			env, err := c.fetch(ctx, r)
			if xhttp.IsStatus(err, http.StatusNotFound) {
				c.log.Debug("tradebox endpoint has no data",
					logger.String("symbol", symbol),
					logger.String("endpoint", r.name),
				)
				return
			}
			if err != nil {
				c.log.Warn("tradebox request failed",
					logger.String("symbol", symbol),
					logger.String("endpoint", r.name),
					logger.Error(err),
				)
				if c.metrics != nil {
					c.metrics.RecordProviderError(r.name)
				}
				return
			}
			*r.dest = env
		}(r)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Client) fetch(ctx context.Context, r endpointRequest) (*models.Envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var env models.Envelope
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + r.path,
		QueryParams: r.query,
	}, &env)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

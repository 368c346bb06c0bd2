package okte

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/config"
	"github.com/anicoll/okte-integration/internal/pkg/model"
)

const (
	dateLayout          = "2006-01-02"
	connectivityTimeout = 10 * time.Second
)

var (
	ErrUnexpectedStatus  = errors.New("OKTE API returned unexpected status")
	ErrMalformedResponse = errors.New("OKTE API returned malformed JSON")
	ErrCannotConnect     = errors.New("cannot_connect")
)

type client struct {
	httpClient *http.Client
	url        string
	rng        model.Range
	logger     *zap.Logger
}

func New(cfg config.OkteConfig) *client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}
	rng := cfg.Range
	if rng == "" {
		rng = model.RangeTodayTomorrow
	}
	return &client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		url:    cfg.URL,
		rng:    rng,
		logger: zap.L(),
	}
}

// GetRange fetches the delivery days selected by the configured range,
// relative to the UTC date of now.
func (c *client) GetRange(ctx context.Context, now time.Time) ([]model.RawRecord, error) {
	to := now
	if c.rng == model.RangeTodayTomorrow {
		to = now.UTC().AddDate(0, 0, 1)
	}
	return c.GetResults(ctx, now, to)
}

// GetResults returns the DAM results for the delivery days from..to.
func (c *client) GetResults(ctx context.Context, from, to time.Time) ([]model.RawRecord, error) {
	resp, err := c.get(ctx, from, to)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []model.RawRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	c.logger.Debug("received DAM results", zap.Int("count", len(records)))
	return records, nil
}

// CheckConnectivity does a bounded request for today's results and only
// looks at the status code.
func (c *client) CheckConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	today := time.Now().UTC()
	resp, err := c.get(ctx, today, today)
	if err != nil {
		c.logger.Error("cannot reach OKTE API", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrCannotConnect, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *client) get(ctx context.Context, from, to time.Time) (*http.Response, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid OKTE url: %w", err)
	}
	q := u.Query()
	q.Set("deliveryDayFrom", from.UTC().Format(dateLayout))
	q.Set("deliveryDayTo", to.UTC().Format(dateLayout))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error communicating with OKTE API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp, nil
}

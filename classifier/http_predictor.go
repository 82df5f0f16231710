package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPPredictorOptions configures the model-server client.
type HTTPPredictorOptions struct {
	URL             string
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// HTTPPredictor asks a model server for the default probability. Requests
// are rate limited and retried with exponential backoff; 4xx answers are
// not retried.
type HTTPPredictor struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	logger     zerolog.Logger
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Probability *float64 `json:"probability"`
}

// StatusError is a non-200 answer from the model server.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "model server: " + http.StatusText(e.StatusCode)
}

func NewHTTPPredictor(opts HTTPPredictorOptions, logger zerolog.Logger) *HTTPPredictor {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 20
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 10 * time.Second
	}

	return &HTTPPredictor{
		url:        opts.URL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		maxElapsed: opts.MaxRetryTimeout,
		logger:     logger.With().Str("component", "classifier").Logger(),
	}
}

func (p *HTTPPredictor) PredictDefaultProbability(ctx context.Context, features []float64) (float64, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("classifier rate limit: %w", err)
	}

	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	var probability float64
	attempt := 0
	operation := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			statusErr := &StatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		var out predictResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode prediction: %w", err))
		}
		if out.Probability == nil || math.IsNaN(*out.Probability) || *out.Probability < 0 || *out.Probability > 1 {
			return backoff.Permanent(ErrInvalidProbability)
		}
		probability = *out.Probability
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = p.maxElapsed

	notify := func(err error, wait time.Duration) {
		p.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("Fallo consultando el modelo, reintentando")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return 0, fmt.Errorf("predict default probability: %w", err)
	}
	return probability, nil
}

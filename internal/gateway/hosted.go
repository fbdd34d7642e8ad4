package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const sessionsPath = "/v1/checkout/sessions"

// HostedGateway talks to the hosted payment processor over HTTP. Calls run
// behind a circuit breaker so a struggling processor fails fast instead of
// tying up checkout requests.
type HostedGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Session]
	log     *logrus.Logger
}

func NewHostedGateway(baseURL, apiKey string, timeout time.Duration, log *logrus.Logger) *HostedGateway {
	breaker := gobreaker.NewCircuitBreaker[*Session](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state change")
		},
	})

	return &HostedGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		log:     log,
	}
}

func (g *HostedGateway) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	session, err := g.breaker.Execute(func() (*Session, error) {
		return g.createSession(ctx, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.log.WithError(err).Warn("payment gateway circuit open")
			return nil, ErrGatewayUnavailable
		}
		return nil, err
	}
	return session, nil
}

func (g *HostedGateway) createSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+sessionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		// Network error or timeout; the caller sees a generic retryable
		// failure, the detail stays here.
		g.log.WithError(err).Error("payment gateway request failed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		g.log.WithField("status", resp.StatusCode).Error("payment gateway server error")
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		g.log.WithField("status", resp.StatusCode).Error("payment gateway rejected session request")
		return nil, fmt.Errorf("%w: status %d", ErrBadRequest, resp.StatusCode)
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("incomplete session response from gateway")
	}

	return &session, nil
}

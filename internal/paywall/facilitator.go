package paywall

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultFacilitatorTimeout = 30 * time.Second

	supportedRetries          = 3
	supportedRetryBaseDelay   = time.Second
	maxFacilitatorBodyInBytes = 1 << 20
)

// Facilitator verifies and settles payments on behalf of the server.
type Facilitator interface {
	Verify(ctx context.Context, payload PaymentPayload, reqs Requirements) (*VerifyResponse, error)
	Settle(ctx context.Context, payload PaymentPayload, reqs Requirements) (*SettleResponse, error)
	Supported(ctx context.Context) (*SupportedResponse, error)
}

// FacilitatorClient talks to a facilitator over http.
type FacilitatorClient struct {
	url        string
	httpClient *http.Client
	retryDelay time.Duration
}

func NewFacilitatorClient(url string, timeout time.Duration) *FacilitatorClient {
	if timeout <= 0 {
		timeout = DefaultFacilitatorTimeout
	}

	return &FacilitatorClient{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: supportedRetryBaseDelay,
	}
}

func (c *FacilitatorClient) URL() string {
	return c.url
}

type facilitatorRequest struct {
	X402Version         int            `json:"x402Version"`
	PaymentPayload      PaymentPayload `json:"paymentPayload"`
	PaymentRequirements Requirements   `json:"paymentRequirements"`
}

func (c *FacilitatorClient) Verify(ctx context.Context, payload PaymentPayload, reqs Requirements) (*VerifyResponse, error) {
	var vr VerifyResponse
	status, body, err := c.post(ctx, "/verify", facilitatorRequest{
		X402Version:         X402Version,
		PaymentPayload:      payload,
		PaymentRequirements: reqs,
	})
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, errors.Wrapf(ErrFacilitator, "verify returned %d: %s", status, truncate(body))
	}

	// a rejected payment may come back as 400 with a reason
	if status != http.StatusOK && vr.InvalidReason == "" {
		return nil, errors.Wrapf(ErrFacilitator, "verify returned %d: %s", status, truncate(body))
	}

	return &vr, nil
}

func (c *FacilitatorClient) Settle(ctx context.Context, payload PaymentPayload, reqs Requirements) (*SettleResponse, error) {
	var sr SettleResponse
	status, body, err := c.post(ctx, "/settle", facilitatorRequest{
		X402Version:         X402Version,
		PaymentPayload:      payload,
		PaymentRequirements: reqs,
	})
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, errors.Wrapf(ErrFacilitator, "settle returned %d: %s", status, truncate(body))
	}

	if status != http.StatusOK && sr.ErrorReason == "" {
		return nil, errors.Wrapf(ErrFacilitator, "settle returned %d: %s", status, truncate(body))
	}

	return &sr, nil
}

// Supported lists the payment kinds of the facilitator. Rate limited calls
// are retried with exponential backoff.
func (c *FacilitatorClient) Supported(ctx context.Context) (*SupportedResponse, error) {
	var lastErr error
	for attempt := 0; attempt < supportedRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/supported", nil)
		if err != nil {
			return nil, errors.Wrap(err, "could not create supported request")
		}

		status, body, err := c.do(req)
		if err != nil {
			return nil, err
		}

		if status == http.StatusOK {
			var sr SupportedResponse
			if err := json.Unmarshal(body, &sr); err != nil {
				return nil, errors.Wrap(ErrFacilitator, "could not decode supported response")
			}

			return &sr, nil
		}

		lastErr = errors.Wrapf(ErrFacilitator, "supported returned %d: %s", status, truncate(body))
		if status != http.StatusTooManyRequests || attempt == supportedRetries-1 {
			return nil, lastErr
		}

		select {
		case <-time.After(c.retryDelay * time.Duration(1<<uint(attempt))):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func (c *FacilitatorClient) post(ctx context.Context, path string, v interface{}) (int, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "could not marshal %s request", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(b))
	if err != nil {
		return 0, nil, errors.Wrapf(err, "could not create %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *FacilitatorClient) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(ErrFacilitatorUnreachable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFacilitatorBodyInBytes))
	if err != nil {
		return 0, nil, errors.Wrap(ErrFacilitatorUnreachable, err.Error())
	}

	return resp.StatusCode, body, nil
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}

	return string(b)
}

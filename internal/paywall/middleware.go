package paywall

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const ContextPayerKey = "x402.payer"

// Protect charges for path. The handler's response is held back until the
// payment is settled, and settlement only happens when the handler
// succeeded (status below 400).
func (p *Paywall) Protect(path string) (gin.HandlerFunc, error) {
	if _, _, err := p.requirements(path); err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		route, reqs, err := p.requirements(path)
		if err != nil {
			p.log.Error("payment requirements unavailable", zap.String("path", path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "payment configuration error"})
			return
		}

		resource := &ResourceInfo{
			URL:         resourceURL(c.Request),
			Description: route.Description,
			MimeType:    route.MimeType,
		}

		header := c.GetHeader(HeaderPaymentSignature)
		if header == "" {
			header = c.GetHeader(HeaderPaymentLegacy)
		}

		if header == "" {
			p.paymentRequired(c, "Payment required", resource, reqs)
			return
		}

		payload, err := DecodePayload(header)
		if err != nil {
			p.paymentRequired(c, err.Error(), resource, reqs)
			return
		}

		chosen, err := match(payload.Accepted, reqs)
		if err != nil {
			p.paymentRequired(c, err.Error(), resource, reqs)
			return
		}

		ctx := c.Request.Context()
		verified, err := p.facilitator.Verify(ctx, *payload, chosen)
		if err != nil {
			p.facilitatorFailed(c, "verify", err)
			return
		}

		if !verified.IsValid {
			p.log.Info("payment rejected",
				zap.String("path", path),
				zap.String("network", chosen.Network),
				zap.String("reason", verified.InvalidReason))
			p.paymentRequired(c, verified.InvalidReason, resource, reqs)
			return
		}

		c.Set(ContextPayerKey, verified.Payer)

		w := &bufferedWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter

		if w.status >= http.StatusBadRequest {
			p.log.Debug("handler failed, payment not settled", zap.String("path", path), zap.Int("status", w.status))
			w.flush()
			return
		}

		settled, err := p.facilitator.Settle(ctx, *payload, chosen)
		if err != nil {
			p.facilitatorFailed(c, "settle", err)
			return
		}

		if !settled.Success {
			p.log.Warn("payment settlement failed",
				zap.String("path", path),
				zap.String("network", chosen.Network),
				zap.String("reason", settled.ErrorReason))
			p.paymentRequired(c, settled.ErrorReason, resource, reqs)
			return
		}

		encoded, err := encodeHeader(settled)
		if err != nil {
			p.log.Error("could not encode settlement", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not encode settlement"})
			return
		}

		p.log.Info("payment settled",
			zap.String("path", path),
			zap.String("network", settled.Network),
			zap.String("payer", settled.Payer),
			zap.String("transaction", settled.Transaction))

		c.Header(HeaderPaymentResponse, encoded)
		w.flush()
	}, nil
}

func (p *Paywall) paymentRequired(c *gin.Context, reason string, resource *ResourceInfo, reqs []Requirements) {
	pr := PaymentRequired{
		X402Version: X402Version,
		Error:       reason,
		Resource:    resource,
		Accepts:     reqs,
	}

	encoded, err := encodeHeader(pr)
	if err != nil {
		p.log.Error("could not encode payment requirements", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not encode payment requirements"})
		return
	}

	c.Header(HeaderPaymentRequired, encoded)
	c.AbortWithStatusJSON(http.StatusPaymentRequired, pr)
}

func (p *Paywall) facilitatorFailed(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrFacilitatorUnreachable) {
		status = http.StatusBadGateway
	}

	p.log.Error("facilitator "+op+" failed", zap.Error(err))
	c.AbortWithStatusJSON(status, gin.H{"error": "payment " + op + " failed", "x402Version": X402Version})
}

func resourceURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	return scheme + "://" + r.Host + r.URL.Path
}

// bufferedWriter keeps the handler's response until the payment outcome is
// known.
type bufferedWriter struct {
	gin.ResponseWriter
	body    bytes.Buffer
	status  int
	written bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.written = true
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.written = true
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	if !w.written {
		return -1
	}

	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.written
}

func (w *bufferedWriter) flush() {
	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
		return
	}

	w.ResponseWriter.WriteHeaderNow()
}

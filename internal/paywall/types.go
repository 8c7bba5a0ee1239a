package paywall

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	X402Version = 2
	SchemeExact = "exact"

	HeaderPaymentSignature = "PAYMENT-SIGNATURE"
	HeaderPaymentLegacy    = "X-PAYMENT"
	HeaderPaymentRequired  = "PAYMENT-REQUIRED"
	HeaderPaymentResponse  = "PAYMENT-RESPONSE"
)

// Requirements is one way of paying for a resource.
type Requirements struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	Asset             string                 `json:"asset"`
	Amount            string                 `json:"amount"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

type ResourceInfo struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// PaymentRequired is the body of a 402 response and the decoded value of
// the PAYMENT-REQUIRED header.
type PaymentRequired struct {
	X402Version int            `json:"x402Version"`
	Error       string         `json:"error,omitempty"`
	Resource    *ResourceInfo  `json:"resource,omitempty"`
	Accepts     []Requirements `json:"accepts"`
}

// PaymentPayload is what a client sends, base64 encoded, in the payment header.
type PaymentPayload struct {
	X402Version int                    `json:"x402Version"`
	Payload     map[string]interface{} `json:"payload"`
	Accepted    Requirements           `json:"accepted"`
	Resource    *ResourceInfo          `json:"resource,omitempty"`
}

type VerifyResponse struct {
	IsValid        bool   `json:"isValid"`
	InvalidReason  string `json:"invalidReason,omitempty"`
	InvalidMessage string `json:"invalidMessage,omitempty"`
	Payer          string `json:"payer,omitempty"`
}

type SettleResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Payer       string `json:"payer,omitempty"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
}

type SupportedKind struct {
	X402Version int                    `json:"x402Version"`
	Scheme      string                 `json:"scheme"`
	Network     string                 `json:"network"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

type SupportedResponse struct {
	Kinds      []SupportedKind `json:"kinds"`
	Extensions []string        `json:"extensions"`
}

func encodeHeader(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "could not marshal header value")
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodePayload reads a payment header value.
func DecodePayload(header string) (*PaymentPayload, error) {
	b, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedPayment, "payment header is not base64")
	}

	var p PaymentPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, errors.Wrap(ErrMalformedPayment, err.Error())
	}

	if p.X402Version != X402Version {
		return nil, errors.Wrapf(ErrMalformedPayment, "unsupported x402 version %d", p.X402Version)
	}

	return &p, nil
}

// EncodePayload is the client side counterpart of DecodePayload.
func EncodePayload(p PaymentPayload) (string, error) {
	return encodeHeader(p)
}

// DecodePaymentRequired reads a PAYMENT-REQUIRED header value.
func DecodePaymentRequired(header string) (*PaymentRequired, error) {
	b, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, errors.Wrap(err, "payment required header is not base64")
	}

	var pr PaymentRequired
	if err := json.Unmarshal(b, &pr); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal payment required header")
	}

	return &pr, nil
}

// DecodeSettlement reads a PAYMENT-RESPONSE header value.
func DecodeSettlement(header string) (*SettleResponse, error) {
	b, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, errors.Wrap(err, "payment response header is not base64")
	}

	var sr SettleResponse
	if err := json.Unmarshal(b, &sr); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal payment response header")
	}

	return &sr, nil
}

package paywall

import "github.com/pkg/errors"

var (
	ErrMalformedPayment       = errors.New("malformed payment header")
	ErrNoMatchingRequirements = errors.New("payment does not match any accepted requirements")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrUnknownAsset           = errors.New("no asset configured for network")
	ErrInvalidRoutes          = errors.New("invalid route configuration")
	ErrInvalidAddress         = errors.New("invalid payee address")
	ErrFacilitatorUnreachable = errors.New("facilitator is unreachable")
	ErrFacilitator            = errors.New("facilitator request failed")
)

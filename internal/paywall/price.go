package paywall

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ParsePrice reads a dollar price such as "$0.01" exactly.
func ParsePrice(price string) (*big.Rat, error) {
	s := strings.TrimSpace(price)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return nil, errors.Wrapf(ErrInvalidPrice, "%q", price)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPrice, "%q", price)
	}

	if r.Sign() <= 0 {
		return nil, errors.Wrapf(ErrInvalidPrice, "%q must be positive", price)
	}

	return r, nil
}

// AmountToAssetUnits converts an amount into the asset's atomic units. An
// amount that needs more precision than the asset has is rejected.
func AmountToAssetUnits(amount *big.Rat, decimals int) (*big.Int, error) {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	units := new(big.Rat).Mul(amount, new(big.Rat).SetInt(scale))
	if !units.IsInt() {
		return nil, errors.Wrapf(ErrInvalidPrice, "%s is finer than %d decimals", amount.FloatString(decimals+2), decimals)
	}

	return new(big.Int).Set(units.Num()), nil
}

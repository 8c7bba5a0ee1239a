package paywall

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const (
	BaseSepolia  = "eip155:84532"
	SolanaDevnet = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"

	evmNamespace = "eip155:"
	svmNamespace = "solana:"
)

// Asset is the token a network is paid in.
type Asset struct {
	Address  string
	Decimals int
	Extra    map[string]interface{}
}

// USDC on the test networks the demo is paid on.
var assets = map[string]Asset{
	BaseSepolia: {
		Address:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Decimals: 6,
		// EIP-712 domain of the token, used to sign transferWithAuthorization
		Extra: map[string]interface{}{"name": "USDC", "version": "2"},
	},
	SolanaDevnet: {
		Address:  "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU",
		Decimals: 6,
	},
}

func AssetFor(network string) (Asset, error) {
	a, ok := assets[network]
	if !ok {
		return Asset{}, errors.Wrap(ErrUnknownAsset, network)
	}

	return a, nil
}

func IsEVM(network string) bool {
	return strings.HasPrefix(network, evmNamespace)
}

func IsSVM(network string) bool {
	return strings.HasPrefix(network, svmNamespace)
}

// ValidateAddress checks that payTo is an address of the network's family.
func ValidateAddress(network, payTo string) error {
	switch {
	case IsEVM(network):
		if !common.IsHexAddress(payTo) {
			return errors.Wrapf(ErrInvalidAddress, "%q is not an evm address", payTo)
		}

		if common.HexToAddress(payTo) == (common.Address{}) {
			return errors.Wrap(ErrInvalidAddress, "evm payee is the zero address")
		}
	case IsSVM(network):
		if _, err := solana.PublicKeyFromBase58(payTo); err != nil {
			return errors.Wrapf(ErrInvalidAddress, "%q is not a solana public key: %s", payTo, err)
		}
	default:
		return errors.Wrapf(ErrInvalidAddress, "unsupported network %s", network)
	}

	return nil
}

// ValidateAddresses checks the two payees the demo is configured with.
func ValidateAddresses(evmAddress, svmAddress string) error {
	if err := ValidateAddress(BaseSepolia, evmAddress); err != nil {
		return errors.Wrap(err, "EVM_ADDRESS")
	}

	if err := ValidateAddress(SolanaDevnet, svmAddress); err != nil {
		return errors.Wrap(err, "SVM_ADDRESS")
	}

	return nil
}

// ChecksumAddress returns the EIP-55 form of an evm address.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}

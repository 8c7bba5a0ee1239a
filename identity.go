package todostore

import (
	"strings"

	"github.com/pkg/errors"
)

// UnknownNetwork is used when the caller did not say which chain the wallet belongs to.
const UnknownNetwork = "unknown"

const keySeparator = ":"

// Identity partitions the store. Network is a chain namespace such as
// eip155:84532 and is used verbatim; Wallet is folded to lower case so the
// checksum casing of EVM addresses does not split one owner in two.
type Identity struct {
	Network string
	Wallet  string
}

func NewIdentity(network, wallet string) (Identity, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return Identity{}, ErrEmptyWallet
	}

	network = strings.TrimSpace(network)
	if network == "" {
		network = UnknownNetwork
	}

	return Identity{Network: network, Wallet: strings.ToLower(wallet)}, nil
}

func (id Identity) Key() string {
	return id.Network + keySeparator + strings.ToLower(id.Wallet)
}

func (id Identity) String() string {
	return id.Key()
}

// ParseKey reverses Key. Networks contain the separator themselves
// (eip155:84532), wallets never do, so the last separator splits the two.
func ParseKey(key string) (Identity, error) {
	i := strings.LastIndex(key, keySeparator)
	if i <= 0 || i == len(key)-1 {
		return Identity{}, errors.Errorf("malformed identity key %q", key)
	}

	return Identity{Network: key[:i], Wallet: key[i+1:]}, nil
}

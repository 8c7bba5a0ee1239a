package paywall

import (
	"sort"

	"github.com/pkg/errors"
)

const defaultMaxTimeoutSeconds = 60

// Accept is one accepted way to pay for a route.
type Accept struct {
	Scheme  string
	Network string
	Price   string
	PayTo   string
}

type Route struct {
	Accepts     []Accept
	Description string
	MimeType    string
}

// Routes maps a request path to its price list.
type Routes map[string]Route

func both(price, evmAddress, svmAddress string) []Accept {
	return []Accept{
		{Scheme: SchemeExact, Network: BaseSepolia, Price: price, PayTo: evmAddress},
		{Scheme: SchemeExact, Network: SolanaDevnet, Price: price, PayTo: svmAddress},
	}
}

// DefaultRoutes is the price list of the demo, payable on Base Sepolia and
// Solana devnet.
func DefaultRoutes(evmAddress, svmAddress string) Routes {
	route := func(price, description, mimeType string) Route {
		return Route{
			Accepts:     both(price, evmAddress, svmAddress),
			Description: description,
			MimeType:    mimeType,
		}
	}

	return Routes{
		"/api/todos":    route("$0.01", "Magic To Do API Access", "application/json"),
		"/api/articles": route("$0.01", "Access to articles API", "application/json"),
		"/api/podcasts": route("$0.01", "Access to podcasts API", "application/json"),
		"/api/videos":   route("$0.01", "Access to videos API", "application/json"),

		"/protected":                      route("$0.001", "Premium music: x402 Remix", "application/json"),
		"/articles/web3-future":           route("$0.01", "Premium Article: The Future of Web3 Payments", "application/json"),
		"/articles/creator-economy":       route("$0.02", "Premium Article: Building in the Creator Economy", "application/json"),
		"/articles/decentralized-content": route("$0.015", "Premium Article: Decentralized Content Distribution", "application/json"),
		"/podcasts/web3-insights":         route("$0.02", "Premium Podcast: Web3 Insights Episode 1", "application/json"),
		"/videos/blockchain-basics":       route("$0.05", "Premium Video: Blockchain Basics - A Complete Guide", "application/json"),
	}
}

// Paths returns the configured paths in lexical order.
func (rs Routes) Paths() []string {
	paths := make([]string, 0, len(rs))
	for p := range rs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths
}

// Requirements resolves the route's accepts into what a client has to pay.
func (r Route) Requirements() ([]Requirements, error) {
	reqs := make([]Requirements, 0, len(r.Accepts))
	for _, a := range r.Accepts {
		asset, err := AssetFor(a.Network)
		if err != nil {
			return nil, err
		}

		price, err := ParsePrice(a.Price)
		if err != nil {
			return nil, err
		}

		amount, err := AmountToAssetUnits(price, asset.Decimals)
		if err != nil {
			return nil, err
		}

		scheme := a.Scheme
		if scheme == "" {
			scheme = SchemeExact
		}

		reqs = append(reqs, Requirements{
			Scheme:            scheme,
			Network:           a.Network,
			Asset:             asset.Address,
			Amount:            amount.String(),
			PayTo:             a.PayTo,
			MaxTimeoutSeconds: defaultMaxTimeoutSeconds,
			Extra:             copyExtra(asset.Extra),
		})
	}

	return reqs, nil
}

// RouteIssue is one problem found by ValidateRoutes.
type RouteIssue struct {
	Path    string
	Problem string
}

// ValidateRoutes checks that every route can be paid on both an evm and a
// solana network, with prices and payees that resolve.
func ValidateRoutes(rs Routes) ([]RouteIssue, error) {
	var issues []RouteIssue
	report := func(path, problem string) {
		issues = append(issues, RouteIssue{Path: path, Problem: problem})
	}

	if len(rs) == 0 {
		return nil, errors.Wrap(ErrInvalidRoutes, "no routes configured")
	}

	for _, path := range rs.Paths() {
		r := rs[path]
		var hasEVM, hasSVM bool
		for _, a := range r.Accepts {
			hasEVM = hasEVM || IsEVM(a.Network)
			hasSVM = hasSVM || IsSVM(a.Network)

			if err := ValidateAddress(a.Network, a.PayTo); err != nil {
				report(path, err.Error())
			}
		}

		if !hasEVM {
			report(path, "no eip155 network accepted")
		}

		if !hasSVM {
			report(path, "no solana network accepted")
		}

		if _, err := r.Requirements(); err != nil {
			report(path, err.Error())
		}
	}

	if len(issues) > 0 {
		return issues, errors.Wrapf(ErrInvalidRoutes, "%d issue(s)", len(issues))
	}

	return nil, nil
}

func copyExtra(src map[string]interface{}) map[string]interface{} {
	if len(src) == 0 {
		return nil
	}

	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

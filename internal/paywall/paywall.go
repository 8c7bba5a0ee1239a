// Package paywall is the resource server side of the x402 payment protocol.
// Signature checks and on chain settlement are left to a facilitator.
package paywall

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Paywall struct {
	facilitator Facilitator
	routes      Routes
	log         *zap.Logger

	mu sync.RWMutex
	// extra of each supported kind, keyed by scheme and network
	kindExtras map[string]map[string]interface{}
}

// New checks that every route resolves into payment requirements.
func New(f Facilitator, routes Routes, log *zap.Logger) (*Paywall, error) {
	if log == nil {
		log = zap.NewNop()
	}

	for _, path := range routes.Paths() {
		if _, err := routes[path].Requirements(); err != nil {
			return nil, errors.Wrapf(err, "route %s", path)
		}
	}

	return &Paywall{
		facilitator: f,
		routes:      routes,
		log:         log,
		kindExtras:  make(map[string]map[string]interface{}),
	}, nil
}

func kindKey(scheme, network string) string {
	return scheme + "|" + network
}

// Sync pulls the supported kinds of the facilitator. Their extra, such as
// the solana fee payer, is advertised with the matching requirements.
func (p *Paywall) Sync(ctx context.Context) (*SupportedResponse, error) {
	sr, err := p.facilitator.Supported(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch supported payment kinds")
	}

	extras := make(map[string]map[string]interface{})
	for _, k := range sr.Kinds {
		if k.X402Version != X402Version || len(k.Extra) == 0 {
			continue
		}
		extras[kindKey(k.Scheme, k.Network)] = copyExtra(k.Extra)
	}

	p.mu.Lock()
	p.kindExtras = extras
	p.mu.Unlock()

	p.log.Info("facilitator payment kinds synced", zap.Int("kinds", len(sr.Kinds)))
	return sr, nil
}

func (p *Paywall) Routes() Routes {
	return p.routes
}

// requirements of path with the facilitator's extra merged in.
func (p *Paywall) requirements(path string) (Route, []Requirements, error) {
	r, ok := p.routes[path]
	if !ok {
		return Route{}, nil, errors.Errorf("no price configured for %s", path)
	}

	reqs, err := r.Requirements()
	if err != nil {
		return Route{}, nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for i := range reqs {
		extra, ok := p.kindExtras[kindKey(reqs[i].Scheme, reqs[i].Network)]
		if !ok {
			continue
		}

		if reqs[i].Extra == nil {
			reqs[i].Extra = make(map[string]interface{}, len(extra))
		}
		for k, v := range extra {
			if _, set := reqs[i].Extra[k]; !set {
				reqs[i].Extra[k] = v
			}
		}
	}

	return r, reqs, nil
}

// match finds the requirements the client chose to pay.
func match(accepted Requirements, reqs []Requirements) (Requirements, error) {
	for _, r := range reqs {
		if accepted.Scheme == r.Scheme &&
			accepted.Network == r.Network &&
			strings.EqualFold(accepted.Asset, r.Asset) &&
			accepted.Amount == r.Amount &&
			strings.EqualFold(accepted.PayTo, r.PayTo) {
			return r, nil
		}
	}

	return Requirements{}, ErrNoMatchingRequirements
}

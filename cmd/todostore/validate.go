package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/denismitr/todostore/internal/config"
	"github.com/denismitr/todostore/internal/paywall"
	"github.com/pkg/errors"
)

const facilitatorCheckTimeout = 15 * time.Second

// validate runs the pre deploy checks and returns the exit code.
func validate(cfg config.Config, contactFacilitator bool, w io.Writer) int {
	failed := 0
	check := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(w, "ok    %s\n", name)
	}

	if cfg.Payment.Disabled {
		fmt.Fprintln(w, "paywall is disabled, nothing to validate")
		return 0
	}

	check("payee addresses", paywall.ValidateAddresses(cfg.Payment.EVMAddress, cfg.Payment.SVMAddress))

	routes := paywall.DefaultRoutes(cfg.Payment.EVMAddress, cfg.Payment.SVMAddress)
	issues, err := paywall.ValidateRoutes(routes)
	for _, is := range issues {
		fmt.Fprintf(w, "      %s: %s\n", is.Path, is.Problem)
	}
	check(fmt.Sprintf("%d routes", len(routes)), err)

	if contactFacilitator {
		check("facilitator "+cfg.Payment.FacilitatorURL, checkFacilitator(cfg.Payment, w))
	}

	if failed > 0 {
		fmt.Fprintf(w, "%d check(s) failed\n", failed)
		return 1
	}

	return 0
}

// checkFacilitator asks for the supported kinds and makes sure both demo
// networks are among them.
func checkFacilitator(cfg config.PaymentConfig, w io.Writer) error {
	client := paywall.NewFacilitatorClient(cfg.FacilitatorURL, cfg.FacilitatorTimeout.Duration())

	ctx, cancel := context.WithTimeout(context.Background(), facilitatorCheckTimeout)
	defer cancel()

	start := time.Now()
	sr, err := client.Supported(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "      /supported answered in %s with %d kind(s)\n", time.Since(start).Round(time.Millisecond), len(sr.Kinds))

	var missing []string
	for _, network := range []string{paywall.BaseSepolia, paywall.SolanaDevnet} {
		found := false
		for _, k := range sr.Kinds {
			if k.Network == network && k.Scheme == paywall.SchemeExact && k.X402Version == paywall.X402Version {
				found = true
				break
			}
		}

		if !found {
			missing = append(missing, network)
		}
	}

	if len(missing) > 0 {
		return errors.Errorf("exact scheme not supported on %s", strings.Join(missing, ", "))
	}

	return nil
}

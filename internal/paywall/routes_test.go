package paywall

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEVMAddress = "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"
	testSVMAddress = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

func TestDefaultRoutes(t *testing.T) {
	routes := DefaultRoutes(testEVMAddress, testSVMAddress)

	assert.Equal(t, []string{
		"/api/articles",
		"/api/podcasts",
		"/api/todos",
		"/api/videos",
		"/articles/creator-economy",
		"/articles/decentralized-content",
		"/articles/web3-future",
		"/podcasts/web3-insights",
		"/protected",
		"/videos/blockchain-basics",
	}, routes.Paths())

	issues, err := ValidateRoutes(routes)
	require.NoError(t, err)
	assert.Empty(t, issues)

	reqs, err := routes["/articles/decentralized-content"].Requirements()
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, Requirements{
		Scheme:            SchemeExact,
		Network:           BaseSepolia,
		Asset:             "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Amount:            "15000",
		PayTo:             testEVMAddress,
		MaxTimeoutSeconds: 60,
		Extra:             map[string]interface{}{"name": "USDC", "version": "2"},
	}, reqs[0])

	assert.Equal(t, SolanaDevnet, reqs[1].Network)
	assert.Equal(t, "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU", reqs[1].Asset)
	assert.Equal(t, "15000", reqs[1].Amount)
	assert.Equal(t, testSVMAddress, reqs[1].PayTo)
	assert.Nil(t, reqs[1].Extra)
}

func TestValidateRoutes(t *testing.T) {
	t.Run("evm only", func(t *testing.T) {
		routes := Routes{"/paid": {Accepts: []Accept{
			{Scheme: SchemeExact, Network: BaseSepolia, Price: "$0.01", PayTo: testEVMAddress},
		}}}

		issues, err := ValidateRoutes(routes)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRoutes))
		assert.Equal(t, []RouteIssue{{Path: "/paid", Problem: "no solana network accepted"}}, issues)
	})

	t.Run("bad payees and prices", func(t *testing.T) {
		routes := Routes{"/paid": {Accepts: []Accept{
			{Scheme: SchemeExact, Network: BaseSepolia, Price: "$0.01", PayTo: "not-an-address"},
			{Scheme: SchemeExact, Network: SolanaDevnet, Price: "free", PayTo: testSVMAddress},
		}}}

		issues, err := ValidateRoutes(routes)
		require.Error(t, err)
		assert.Len(t, issues, 2)
	})

	t.Run("unknown network", func(t *testing.T) {
		routes := Routes{"/paid": {Accepts: []Accept{
			{Scheme: SchemeExact, Network: "eip155:1", Price: "$0.01", PayTo: testEVMAddress},
			{Scheme: SchemeExact, Network: SolanaDevnet, Price: "$0.01", PayTo: testSVMAddress},
		}}}

		issues, err := ValidateRoutes(routes)
		require.Error(t, err)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Problem, "eip155:1")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ValidateRoutes(Routes{})
		assert.True(t, errors.Is(err, ErrInvalidRoutes))
	})
}

func TestValidateAddresses(t *testing.T) {
	tt := []struct {
		name string
		evm  string
		svm  string
		ok   bool
	}{
		{name: "valid", evm: testEVMAddress, svm: testSVMAddress, ok: true},
		{name: "lower case evm", evm: "0x209693bc6afc0c5328ba36faf03c514ef312287c", svm: testSVMAddress, ok: true},
		{name: "short evm", evm: "0x1234", svm: testSVMAddress},
		{name: "zero evm", evm: "0x0000000000000000000000000000000000000000", svm: testSVMAddress},
		{name: "evm as svm", evm: testEVMAddress, svm: testEVMAddress},
		{name: "garbage svm", evm: testEVMAddress, svm: "0OIl"},
		{name: "empty", evm: "", svm: ""},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAddresses(tc.evm, tc.svm)
			if tc.ok {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAddress))
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	lower := "0x209693bc6afc0c5328ba36faf03c514ef312287c"
	sum := ChecksumAddress(lower)
	assert.True(t, strings.EqualFold(lower, sum))
	assert.Equal(t, sum, ChecksumAddress(strings.ToUpper(lower[2:])))
}

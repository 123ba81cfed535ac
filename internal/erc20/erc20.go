// Package erc20 holds the fixed wire-level ERC20 contract interface and the
// Polygon mainnet addresses the approver targets.
//
// Function selectors:
//
//	symbol()            → 0x95d89b41
//	decimals()          → 0x313ce567
//	allowance(a,a)      → 0xdd62ed3e
//	balanceOf(address)  → 0x70a08231
//	approve(a,u256)     → 0x095ea7b3
package erc20

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/math"
)

const (
	// USDC.e collateral on Polygon
	USDCAddress = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"

	// Polymarket exchange contracts (the default spenders)
	CTFExchangeAddress        = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
	NegRiskCTFExchangeAddress = "0xC5d563A36AE78145C45a50134d48A1215220f80a"
	NegRiskAdapterAddress     = "0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"
)

// MaxAllowance is 2^256-1, the "infinite" allowance submitted to approve()
// and the threshold above which a pair counts as already approved.
var MaxAllowance = math.MaxBig256

// IsUnlimited reports whether an on-chain allowance counts as unlimited.
func IsUnlimited(allowance *big.Int) bool {
	return allowance != nil && allowance.Cmp(MaxAllowance) >= 0
}

const abiJSON = `[
	{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// ABI is the parsed standard ERC20 interface, shared by all callers.
var ABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("erc20: invalid ABI: " + err.Error())
	}
	return parsed
}

// Package types defines the shared domain types for the approver.
package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ── Approval outcome ─────────────────────────────────────────────────────

// Status is the tri-state result of one approval attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome records the result of one (wallet, token, spender) approval.
// Created exactly once per triple and never mutated afterwards.
type Outcome struct {
	Wallet  common.Address
	Token   common.Address
	Spender common.Address
	Symbol  string // token symbol, best effort ("" if the lookup failed)
	Status  Status
	TxHash  string // set only when a transaction was actually submitted
	Err     string // set only when Status == StatusFailed
}

// String returns a one-line human-readable summary.
func (o Outcome) String() string {
	s := fmt.Sprintf("%s | %s → %s | %s", o.Wallet.Hex(), o.Symbol, o.Spender.Hex(), o.Status)
	if o.TxHash != "" {
		s += " | tx=" + o.TxHash
	}
	if o.Err != "" {
		s += " | " + o.Err
	}
	return s
}

// Skipped creates a skipped outcome (allowance already unlimited).
func Skipped(wallet, token, spender common.Address, symbol string) Outcome {
	return Outcome{Wallet: wallet, Token: token, Spender: spender, Symbol: symbol, Status: StatusSkipped}
}

// Succeeded creates a succeeded outcome for a submitted transaction.
func Succeeded(wallet, token, spender common.Address, symbol, txHash string) Outcome {
	return Outcome{Wallet: wallet, Token: token, Spender: spender, Symbol: symbol, Status: StatusSucceeded, TxHash: txHash}
}

// Failed creates a failed outcome. txHash may be "" when the failure
// happened before submission.
func Failed(wallet, token, spender common.Address, symbol, txHash string, err error) Outcome {
	return Outcome{
		Wallet:  wallet,
		Token:   token,
		Spender: spender,
		Symbol:  symbol,
		Status:  StatusFailed,
		TxHash:  txHash,
		Err:     err.Error(),
	}
}

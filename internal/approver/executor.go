// Package approver implements the approval orchestration engine: deciding
// per (wallet, token, spender) triple whether an approve transaction is
// needed, issuing it, and collecting per-triple outcomes without one
// failure aborting the batch.
package approver

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/gipsh/dex-approver-go/internal/chain"
	"github.com/gipsh/dex-approver-go/internal/erc20"
	"github.com/gipsh/dex-approver-go/internal/types"
	"github.com/gipsh/dex-approver-go/internal/wallet"
)

// Backend is the chain access the approver needs. *chain.Client satisfies
// it; tests substitute a fake.
type Backend interface {
	TokenSymbol(ctx context.Context, token common.Address) (string, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, w *wallet.Wallet, token, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error)
	WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
}

// Inspector reads current on-chain allowances. Every call hits the chain;
// nothing is cached, so decisions are never made on stale values.
type Inspector struct {
	backend Backend
}

// NewInspector creates an Inspector over the given backend.
func NewInspector(backend Backend) *Inspector {
	return &Inspector{backend: backend}
}

// Allowance returns the current allowance for (owner, token, spender).
func (i *Inspector) Allowance(ctx context.Context, owner, token, spender common.Address) (*big.Int, error) {
	return i.backend.Allowance(ctx, token, owner, spender)
}

// Executor handles a single (wallet, token, spender) triple: skip if the
// allowance is already unlimited, otherwise submit approve(spender, 2^256-1)
// and optionally wait for it to be mined.
type Executor struct {
	backend   Backend
	inspector *Inspector
	dryRun    bool
	log       *slog.Logger
}

// NewExecutor creates an Executor. With dryRun set it walks the full
// decision path but submits nothing.
func NewExecutor(backend Backend, dryRun bool) *Executor {
	return &Executor{
		backend:   backend,
		inspector: NewInspector(backend),
		dryRun:    dryRun,
		log:       slog.With("component", "executor"),
	}
}

// Approve processes one triple and always returns an outcome: errors from
// chain interaction are folded into a failed outcome, never propagated, so
// one triple can never abort the batch.
func (e *Executor) Approve(ctx context.Context, w *wallet.Wallet, token, spender common.Address, confirm bool) types.Outcome {
	symbol, err := e.backend.TokenSymbol(ctx, token)
	if err != nil {
		e.log.Error("symbol lookup failed", "token", token.Hex(), "error", err)
		return types.Failed(w.Address, token, spender, "", "", err)
	}

	decimals, err := e.backend.TokenDecimals(ctx, token)
	if err != nil {
		e.log.Error("decimals lookup failed", "token", symbol, "error", err)
		return types.Failed(w.Address, token, spender, symbol, "", err)
	}

	current, err := e.inspector.Allowance(ctx, w.Address, token, spender)
	if err != nil {
		e.log.Error("allowance read failed", "wallet", w.Address.Hex(), "token", symbol, "error", err)
		return types.Failed(w.Address, token, spender, symbol, "", err)
	}

	if erc20.IsUnlimited(current) {
		e.log.Info("already approved, skipping",
			"wallet", w.Address.Hex(), "token", symbol, "spender", spender.Hex())
		return types.Skipped(w.Address, token, spender, symbol)
	}

	e.log.Info("approving",
		"wallet", w.Address.Hex(), "token", symbol, "decimals", decimals,
		"spender", spender.Hex(), "current", current.String())

	if e.dryRun {
		e.log.Info("dry run, not submitting", "wallet", w.Address.Hex(), "token", symbol)
		return types.Skipped(w.Address, token, spender, symbol)
	}

	tx, err := e.backend.Approve(ctx, w, token, spender, erc20.MaxAllowance)
	if err != nil {
		e.log.Error("submission failed", "wallet", w.Address.Hex(), "token", symbol, "error", err)
		return types.Failed(w.Address, token, spender, symbol, "", err)
	}
	txHash := tx.Hash().Hex()

	if !confirm {
		return types.Succeeded(w.Address, token, spender, symbol, txHash)
	}

	receipt, err := e.backend.WaitMined(ctx, tx)
	if err != nil {
		e.log.Error("confirmation failed", "tx", txHash, "error", err)
		return types.Failed(w.Address, token, spender, symbol, txHash, err)
	}
	if receipt.Status == ethtypes.ReceiptStatusFailed {
		e.log.Error("transaction reverted", "tx", txHash)
		return types.Failed(w.Address, token, spender, symbol, txHash, chain.ErrReverted)
	}

	e.log.Info("approved",
		"wallet", w.Address.Hex(), "token", symbol, "tx", txHash,
		"block", receipt.BlockNumber.String())
	return types.Succeeded(w.Address, token, spender, symbol, txHash)
}

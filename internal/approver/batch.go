package approver

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gipsh/dex-approver-go/internal/types"
	"github.com/gipsh/dex-approver-go/internal/wallet"
)

// Batch fans the Executor out over wallets × tokens × spenders.
type Batch struct {
	exec *Executor
	log  *slog.Logger
}

// NewBatch creates a Batch over the given backend.
func NewBatch(backend Backend, dryRun bool) *Batch {
	return &Batch{
		exec: NewExecutor(backend, dryRun),
		log:  slog.With("component", "batch"),
	}
}

// Run processes every (spender, wallet, token) combination strictly
// sequentially — spenders outer, wallets middle, tokens inner — and returns
// one outcome per combination in that order.
//
// Sequential processing is deliberate: transactions from the same wallet
// must keep nonce order, so each triple completes (including confirmation,
// if requested) before the next starts. Failures never short-circuit.
func (b *Batch) Run(ctx context.Context, wallets []*wallet.Wallet, tokens, spenders []common.Address, confirm bool) []types.Outcome {
	outcomes := make([]types.Outcome, 0, len(spenders)*len(wallets)*len(tokens))

	for _, spender := range spenders {
		b.log.Info("processing spender", "spender", spender.Hex())

		for wi, w := range wallets {
			b.log.Info("processing wallet",
				"wallet", w.String(), "progress", wi+1, "of", len(wallets))

			for _, token := range tokens {
				outcomes = append(outcomes, b.exec.Approve(ctx, w, token, spender, confirm))
			}
		}
	}

	return outcomes
}

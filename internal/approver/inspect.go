package approver

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gipsh/dex-approver-go/internal/erc20"
	"github.com/gipsh/dex-approver-go/internal/wallet"
)

// AllowanceInfo is one row of the read-only check report.
type AllowanceInfo struct {
	Wallet    common.Address
	Token     common.Address
	Spender   common.Address
	Symbol    string
	Decimals  uint8
	Allowance *big.Int
	Unlimited bool
	Err       string // read failure for this row, if any
}

// Check reports the current allowance state for every combination without
// sending anything. Same iteration order as Run.
func (b *Batch) Check(ctx context.Context, wallets []*wallet.Wallet, tokens, spenders []common.Address) []AllowanceInfo {
	infos := make([]AllowanceInfo, 0, len(spenders)*len(wallets)*len(tokens))

	for _, spender := range spenders {
		for _, w := range wallets {
			for _, token := range tokens {
				infos = append(infos, b.checkOne(ctx, w, token, spender))
			}
		}
	}

	return infos
}

func (b *Batch) checkOne(ctx context.Context, w *wallet.Wallet, token, spender common.Address) AllowanceInfo {
	info := AllowanceInfo{Wallet: w.Address, Token: token, Spender: spender}

	symbol, err := b.exec.backend.TokenSymbol(ctx, token)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.Symbol = symbol

	decimals, err := b.exec.backend.TokenDecimals(ctx, token)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.Decimals = decimals

	allowance, err := b.exec.inspector.Allowance(ctx, w.Address, token, spender)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.Allowance = allowance
	info.Unlimited = erc20.IsUnlimited(allowance)
	return info
}

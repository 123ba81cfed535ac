// Package chain handles on-chain operations via go-ethereum.
//
// Reads go through eth_call with the packed ERC20 ABI; writes are signed
// locally with the wallet key and broadcast as raw transactions, EIP-1559
// when the chain has a base fee, legacy otherwise.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/gipsh/dex-approver-go/internal/erc20"
	"github.com/gipsh/dex-approver-go/internal/wallet"
)

// Client wraps an RPC connection for ERC20 reads and approve submissions.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	gasLimit uint64 // 0 = estimate per transaction
	log      *slog.Logger
}

// Dial connects to the RPC endpoint and fetches the chain ID once.
//
//	gasLimit — fixed gas limit for approve txs, 0 to estimate
func Dial(ctx context.Context, rpcURL string, gasLimit uint64) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("fetch chain ID: %w", err)
	}

	return &Client{
		eth:      eth,
		chainID:  chainID,
		gasLimit: gasLimit,
		log:      slog.With("component", "chain"),
	}, nil
}

// ChainID returns the connected chain's ID.
func (c *Client) ChainID() *big.Int { return c.chainID }

// Close releases the underlying RPC connection.
func (c *Client) Close() { c.eth.Close() }

// ── Reads ────────────────────────────────────────────────────────────────

// call packs, executes, and unpacks a single view call on a token contract.
func (c *Client) call(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := erc20.ABI.Pack(method, args...)
	if err != nil {
		return nil, &QueryError{Op: method, Err: err}
	}

	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, &QueryError{Op: fmt.Sprintf("%s %s", method, token.Hex()), Err: err}
	}

	out, err := erc20.ABI.Unpack(method, raw)
	if err != nil {
		return nil, &QueryError{Op: fmt.Sprintf("%s %s", method, token.Hex()), Err: err}
	}
	return out, nil
}

// TokenSymbol fetches symbol() from the token contract.
func (c *Client) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	out, err := c.call(ctx, token, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := out[0].(string)
	if !ok {
		return "", &QueryError{Op: "symbol " + token.Hex(), Err: fmt.Errorf("unexpected return type %T", out[0])}
	}
	return symbol, nil
}

// TokenDecimals fetches decimals() from the token contract.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := c.call(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, &QueryError{Op: "decimals " + token.Hex(), Err: fmt.Errorf("unexpected return type %T", out[0])}
	}
	return decimals, nil
}

// Allowance fetches allowance(owner, spender), fresh on every call.
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, &QueryError{Op: "allowance " + token.Hex(), Err: fmt.Errorf("unexpected return type %T", out[0])}
	}
	return allowance, nil
}

// NativeBalance returns the wallet's gas-token balance (POL on Polygon).
func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, &QueryError{Op: "balance " + addr.Hex(), Err: err}
	}
	return balance, nil
}

// ── Writes ───────────────────────────────────────────────────────────────

// Approve signs and broadcasts approve(spender, amount) from the wallet.
// The returned transaction carries the hash the moment broadcasting
// succeeds, before any confirmation.
func (c *Client) Approve(ctx context.Context, w *wallet.Wallet, token, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	op := fmt.Sprintf("approve %s for %s", token.Hex(), spender.Hex())

	data, err := erc20.ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	nonce, err := c.eth.PendingNonceAt(ctx, w.Address)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	gas := c.gasLimit
	if gas == 0 {
		gas, err = c.eth.EstimateGas(ctx, ethereum.CallMsg{From: w.Address, To: &token, Data: data})
		if err != nil {
			return nil, &SubmissionError{Op: op, Err: err}
		}
	}

	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	var txData ethtypes.TxData
	if head.BaseFee != nil {
		tip, err := c.eth.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, &SubmissionError{Op: op, Err: err}
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		txData = &ethtypes.DynamicFeeTx{
			ChainID:   c.chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &token,
			Data:      data,
		}
	} else {
		price, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, &SubmissionError{Op: op, Err: err}
		}
		txData = &ethtypes.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gas,
			To:       &token,
			Data:     data,
		}
	}

	signed, err := ethtypes.SignNewTx(w.Key, ethtypes.LatestSignerForChainID(c.chainID), txData)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	c.log.Debug("transaction broadcast", "tx", signed.Hash().Hex(), "nonce", nonce, "gas", gas)
	return signed, nil
}

// WaitMined blocks until the transaction is mined or ctx is canceled.
// Receipt status is the caller's to inspect.
func (c *Client) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, &ConfirmationError{TxHash: tx.Hash().Hex(), Err: err}
	}
	return receipt, nil
}

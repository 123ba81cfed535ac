package approver

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsh/dex-approver-go/internal/chain"
	"github.com/gipsh/dex-approver-go/internal/erc20"
	"github.com/gipsh/dex-approver-go/internal/types"
	"github.com/gipsh/dex-approver-go/internal/wallet"
)

// ── Fake backend ─────────────────────────────────────────────────────────

type approveCall struct {
	wallet  common.Address
	token   common.Address
	spender common.Address
	amount  *big.Int
	txHash  string
}

type fakeBackend struct {
	allowances    map[string]*big.Int       // token|owner|spender → allowance, default 0
	symbolErr     map[common.Address]error  // per-token symbol() failure
	allowanceErr  error                     // global allowance() failure
	approveErr    map[common.Address]error  // per-wallet submission failure
	waitErr       error                     // global confirmation failure
	receiptStatus uint64
	approves      []approveCall
	waits         int
	nonce         uint64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		allowances:    map[string]*big.Int{},
		symbolErr:     map[common.Address]error{},
		approveErr:    map[common.Address]error{},
		receiptStatus: ethtypes.ReceiptStatusSuccessful,
	}
}

func allowanceKey(token, owner, spender common.Address) string {
	return token.Hex() + "|" + owner.Hex() + "|" + spender.Hex()
}

func (f *fakeBackend) setAllowance(token, owner, spender common.Address, v *big.Int) {
	f.allowances[allowanceKey(token, owner, spender)] = v
}

func (f *fakeBackend) TokenSymbol(_ context.Context, token common.Address) (string, error) {
	if err := f.symbolErr[token]; err != nil {
		return "", err
	}
	return "TOK-" + token.Hex()[2:6], nil
}

func (f *fakeBackend) TokenDecimals(_ context.Context, _ common.Address) (uint8, error) {
	return 6, nil
}

func (f *fakeBackend) Allowance(_ context.Context, token, owner, spender common.Address) (*big.Int, error) {
	if f.allowanceErr != nil {
		return nil, f.allowanceErr
	}
	if v, ok := f.allowances[allowanceKey(token, owner, spender)]; ok {
		return v, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeBackend) Approve(_ context.Context, w *wallet.Wallet, token, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	if err := f.approveErr[w.Address]; err != nil {
		return nil, err
	}
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    f.nonce,
		To:       &token,
		Gas:      60000,
		GasPrice: big.NewInt(1),
	})
	f.nonce++
	f.approves = append(f.approves, approveCall{
		wallet:  w.Address,
		token:   token,
		spender: spender,
		amount:  amount,
		txHash:  tx.Hash().Hex(),
	})
	return tx, nil
}

func (f *fakeBackend) WaitMined(_ context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	f.waits++
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &ethtypes.Receipt{Status: f.receiptStatus, BlockNumber: big.NewInt(1234)}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────

func testWallet(t *testing.T, id byte) *wallet.Wallet {
	t.Helper()
	key, err := crypto.ToECDSA(bytes.Repeat([]byte{id}, 32))
	require.NoError(t, err)
	return &wallet.Wallet{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey), Index: int(id)}
}

var (
	tokenX   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenY   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	spenderS = common.HexToAddress("0x0000000000000000000000000000000000000011")
	spenderT = common.HexToAddress("0x0000000000000000000000000000000000000022")
)

// ── Executor ─────────────────────────────────────────────────────────────

func TestExecutorSkipsUnlimitedAllowance(t *testing.T) {
	backend := newFakeBackend()
	w := testWallet(t, 1)
	backend.setAllowance(tokenX, w.Address, spenderS, erc20.MaxAllowance)

	out := NewExecutor(backend, false).Approve(context.Background(), w, tokenX, spenderS, true)

	assert.Equal(t, types.StatusSkipped, out.Status)
	assert.Empty(t, out.TxHash)
	assert.Empty(t, out.Err)
	assert.Empty(t, backend.approves, "no transaction may be submitted for an approved pair")
}

func TestExecutorSubmitsMaxAllowance(t *testing.T) {
	backend := newFakeBackend()
	w := testWallet(t, 1)

	out := NewExecutor(backend, false).Approve(context.Background(), w, tokenX, spenderS, true)

	require.Equal(t, types.StatusSucceeded, out.Status)
	require.Len(t, backend.approves, 1)
	call := backend.approves[0]
	assert.Zero(t, call.amount.Cmp(erc20.MaxAllowance), "approve amount must be 2^256-1")
	assert.Equal(t, call.txHash, out.TxHash, "outcome carries the submitted tx hash")
	assert.Equal(t, w.Address, call.wallet)
	assert.Equal(t, spenderS, call.spender)
}

func TestExecutorNoWaitWhenConfirmFalse(t *testing.T) {
	backend := newFakeBackend()
	w := testWallet(t, 1)

	out := NewExecutor(backend, false).Approve(context.Background(), w, tokenX, spenderS, false)

	assert.Equal(t, types.StatusSucceeded, out.Status)
	assert.NotEmpty(t, out.TxHash)
	assert.Zero(t, backend.waits, "fire-and-forget must not wait for mining")
}

func TestExecutorRevertedTransaction(t *testing.T) {
	backend := newFakeBackend()
	backend.receiptStatus = ethtypes.ReceiptStatusFailed
	w := testWallet(t, 1)

	out := NewExecutor(backend, false).Approve(context.Background(), w, tokenX, spenderS, true)

	assert.Equal(t, types.StatusFailed, out.Status)
	assert.Equal(t, chain.ErrReverted.Error(), out.Err)
	assert.NotEmpty(t, out.TxHash, "hash is recorded even when the tx reverts")
}

func TestExecutorConfirmationFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.waitErr = errors.New("transaction dropped from mempool")
	w := testWallet(t, 1)

	out := NewExecutor(backend, false).Approve(context.Background(), w, tokenX, spenderS, true)

	assert.Equal(t, types.StatusFailed, out.Status)
	assert.Equal(t, "transaction dropped from mempool", out.Err)
	assert.NotEmpty(t, out.TxHash)
}

func TestExecutorMetadataFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.symbolErr[tokenX] = errors.New("execution aborted")
	w := testWallet(t, 1)

	out := NewExecutor(backend, false).Approve(context.Background(), w, tokenX, spenderS, true)

	assert.Equal(t, types.StatusFailed, out.Status)
	assert.Empty(t, out.TxHash)
	assert.Empty(t, backend.approves)
}

func TestExecutorDryRunSubmitsNothing(t *testing.T) {
	backend := newFakeBackend()
	w := testWallet(t, 1)

	out := NewExecutor(backend, true).Approve(context.Background(), w, tokenX, spenderS, true)

	assert.Equal(t, types.StatusSkipped, out.Status)
	assert.Empty(t, backend.approves)
}

// ── Batch ────────────────────────────────────────────────────────────────

func TestBatchOneOutcomePerCombination(t *testing.T) {
	backend := newFakeBackend()
	wallets := []*wallet.Wallet{testWallet(t, 1), testWallet(t, 2)}
	backend.approveErr[wallets[0].Address] = errors.New("nonce too low")

	outcomes := NewBatch(backend, false).Run(context.Background(),
		wallets, []common.Address{tokenX, tokenY}, []common.Address{spenderS, spenderT}, true)

	assert.Len(t, outcomes, 8, "2 wallets × 2 tokens × 2 spenders")
}

func TestBatchFailureIsolation(t *testing.T) {
	// Scenario B: wallet 2's submission fails, wallet 1 is unaffected.
	backend := newFakeBackend()
	w1, w2 := testWallet(t, 1), testWallet(t, 2)
	backend.approveErr[w2.Address] = errors.New("insufficient funds")

	outcomes := NewBatch(backend, false).Run(context.Background(),
		[]*wallet.Wallet{w1, w2}, []common.Address{tokenX}, []common.Address{spenderS}, true)

	require.Len(t, outcomes, 2)
	assert.Equal(t, types.StatusSucceeded, outcomes[0].Status)
	assert.Equal(t, types.StatusFailed, outcomes[1].Status)
	assert.Equal(t, "insufficient funds", outcomes[1].Err)
}

func TestBatchMixedSkipAndSend(t *testing.T) {
	// Scenario A: token X already approved, token Y at zero.
	backend := newFakeBackend()
	w := testWallet(t, 1)
	backend.setAllowance(tokenX, w.Address, spenderS, erc20.MaxAllowance)

	outcomes := NewBatch(backend, false).Run(context.Background(),
		[]*wallet.Wallet{w}, []common.Address{tokenX, tokenY}, []common.Address{spenderS}, true)

	require.Len(t, outcomes, 2)
	assert.Equal(t, types.StatusSkipped, outcomes[0].Status)
	assert.Equal(t, tokenX, outcomes[0].Token)
	assert.Equal(t, types.StatusSucceeded, outcomes[1].Status)
	assert.Equal(t, tokenY, outcomes[1].Token)
	assert.Len(t, backend.approves, 1, "only the unapproved token gets a transaction")
	assert.Equal(t, 1, backend.waits)
}

func TestBatchOrdering(t *testing.T) {
	// Spenders outer, wallets middle, tokens inner.
	backend := newFakeBackend()
	w1, w2 := testWallet(t, 1), testWallet(t, 2)

	NewBatch(backend, false).Run(context.Background(),
		[]*wallet.Wallet{w1, w2}, []common.Address{tokenX, tokenY}, []common.Address{spenderS, spenderT}, false)

	require.Len(t, backend.approves, 8)
	expected := []approveCall{
		{wallet: w1.Address, token: tokenX, spender: spenderS},
		{wallet: w1.Address, token: tokenY, spender: spenderS},
		{wallet: w2.Address, token: tokenX, spender: spenderS},
		{wallet: w2.Address, token: tokenY, spender: spenderS},
		{wallet: w1.Address, token: tokenX, spender: spenderT},
		{wallet: w1.Address, token: tokenY, spender: spenderT},
		{wallet: w2.Address, token: tokenX, spender: spenderT},
		{wallet: w2.Address, token: tokenY, spender: spenderT},
	}
	for i, want := range expected {
		assert.Equal(t, want.wallet, backend.approves[i].wallet, "call %d wallet", i)
		assert.Equal(t, want.token, backend.approves[i].token, "call %d token", i)
		assert.Equal(t, want.spender, backend.approves[i].spender, "call %d spender", i)
	}
}

func TestBatchTwoSpendersBothConfirmed(t *testing.T) {
	// Scenario C: one wallet, one token, two spenders, both at zero.
	backend := newFakeBackend()
	w := testWallet(t, 1)

	outcomes := NewBatch(backend, false).Run(context.Background(),
		[]*wallet.Wallet{w}, []common.Address{tokenX}, []common.Address{spenderS, spenderT}, true)

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, types.StatusSucceeded, o.Status)
	}
	require.Len(t, backend.approves, 2)
	assert.Equal(t, spenderS, backend.approves[0].spender)
	assert.Equal(t, spenderT, backend.approves[1].spender)
	assert.Equal(t, 2, backend.waits)
}

func TestBatchReadFailureDoesNotAbort(t *testing.T) {
	backend := newFakeBackend()
	backend.allowanceErr = errors.New("connection reset")
	wallets := []*wallet.Wallet{testWallet(t, 1), testWallet(t, 2)}

	outcomes := NewBatch(backend, false).Run(context.Background(),
		wallets, []common.Address{tokenX, tokenY}, []common.Address{spenderS}, true)

	require.Len(t, outcomes, 4)
	for _, o := range outcomes {
		assert.Equal(t, types.StatusFailed, o.Status)
		assert.Equal(t, "connection reset", o.Err)
	}
}

// ── Check ────────────────────────────────────────────────────────────────

func TestCheckReportsWithoutSending(t *testing.T) {
	backend := newFakeBackend()
	w := testWallet(t, 1)
	backend.setAllowance(tokenX, w.Address, spenderS, erc20.MaxAllowance)
	backend.setAllowance(tokenY, w.Address, spenderS, big.NewInt(5000))

	infos := NewBatch(backend, false).Check(context.Background(),
		[]*wallet.Wallet{w}, []common.Address{tokenX, tokenY}, []common.Address{spenderS})

	require.Len(t, infos, 2)
	assert.True(t, infos[0].Unlimited)
	assert.False(t, infos[1].Unlimited)
	assert.Zero(t, infos[1].Allowance.Cmp(big.NewInt(5000)))
	assert.Empty(t, backend.approves)
	assert.Equal(t, uint8(6), infos[0].Decimals)
}

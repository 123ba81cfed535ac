// dex-approver-go — batch ERC20 allowance setup for DEX contracts.
//
// Derives wallets from one or more seed phrases, then makes sure every
// configured (wallet, token, spender) pair carries an unlimited allowance,
// skipping pairs that already do. One outcome is reported per pair; a
// failed pair never aborts the rest of the batch.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/params"
	"github.com/spf13/cobra"

	"github.com/gipsh/dex-approver-go/internal/approver"
	"github.com/gipsh/dex-approver-go/internal/chain"
	"github.com/gipsh/dex-approver-go/internal/config"
	"github.com/gipsh/dex-approver-go/internal/logger"
	"github.com/gipsh/dex-approver-go/internal/report"
	"github.com/gipsh/dex-approver-go/internal/wallet"
)

var yes bool

var rootCmd = &cobra.Command{
	Use:   "approver",
	Short: "Batch ERC20 allowance setup for DEX contracts",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit unlimited approvals for every wallet × token × spender pair",
	RunE:  runBatch,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report current allowances without sending anything",
	RunE:  runCheck,
}

func init() {
	cobra.OnInitialize(initConfig)
	runCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}

func initConfig() {
	config.Load()
	logger.Setup(config.LogLevel)
}

func main() {
	ctx, _ := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) ([]*wallet.Wallet, *chain.Client, error) {
	wallets, err := wallet.DeriveWallets(config.SeedPhrases, config.PrivateKeys, config.WalletsPerSeed)
	if err != nil {
		return nil, nil, err
	}
	if len(wallets) == 0 {
		return nil, nil, fmt.Errorf("no wallets configured: set SEED_PHRASES or PRIVATE_KEYS")
	}
	if len(config.Tokens) == 0 || len(config.Spenders) == 0 {
		return nil, nil, fmt.Errorf("no tokens or spenders configured")
	}

	client, err := chain.Dial(ctx, config.PolygonRPC, config.GasLimit)
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("connected to chain %s | %d wallets | %d tokens | %d spenders\n",
		client.ChainID(), len(wallets), len(config.Tokens), len(config.Spenders))

	return wallets, client, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	wallets, client, err := setup(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	// Gas preflight: purely informational, the batch runs regardless.
	for _, w := range wallets {
		balance, err := client.NativeBalance(ctx, w.Address)
		if err != nil {
			fmt.Printf("  %s | balance unavailable: %v\n", w, err)
			continue
		}
		fmt.Printf("  %s | %s POL\n", w, formatEther(balance))
	}

	total := len(wallets) * len(config.Tokens) * len(config.Spenders)
	if config.DryRun {
		fmt.Println("dry run: no transactions will be submitted")
	} else if !yes && !promptYes(fmt.Sprintf("About to submit up to %d approvals. Proceed? (yes/no): ", total)) {
		return fmt.Errorf("aborted")
	}

	batch := approver.NewBatch(client, config.DryRun)
	outcomes := batch.Run(ctx, wallets, config.Tokens, config.Spenders, config.Confirm)

	summary := report.Summarize(outcomes)
	summary.Print(os.Stdout)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d approvals failed", summary.Failed, summary.Total)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	wallets, client, err := setup(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	batch := approver.NewBatch(client, true)
	for _, info := range batch.Check(ctx, wallets, config.Tokens, config.Spenders) {
		switch {
		case info.Err != "":
			fmt.Printf("  %s | %s → %s | ERROR %s\n",
				info.Wallet.Hex(), info.Token.Hex(), info.Spender.Hex(), info.Err)
		case info.Unlimited:
			fmt.Printf("  %s | %s → %s | unlimited\n",
				info.Wallet.Hex(), info.Symbol, info.Spender.Hex())
		default:
			fmt.Printf("  %s | %s → %s | allowance %s\n",
				info.Wallet.Hex(), info.Symbol, info.Spender.Hex(), info.Allowance)
		}
	}
	return nil
}

func promptYes(question string) bool {
	fmt.Print(question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer)) == "yes"
}

func formatEther(wei *big.Int) string {
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return f.Text('f', 4)
}

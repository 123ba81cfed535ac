// Package config loads approver configuration from environment / .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/gipsh/dex-approver-go/internal/erc20"
)

// ── Config fields (populated by Load) ───────────────────────────────────
var (
	// Wallet provisioning
	SeedPhrases    []string // one entry per mnemonic, each derives WalletsPerSeed wallets
	PrivateKeys    []string // standalone hex keys appended after derived wallets
	WalletsPerSeed int

	// Chain access
	PolygonRPC string
	GasLimit   uint64 // 0 = estimate per transaction

	// Approval targets
	Tokens   []common.Address
	Spenders []common.Address

	// Behavior
	Confirm  bool // wait for each approve tx to be mined
	DryRun   bool
	LogLevel string
)

// Load reads .env (if present) then overrides from OS env vars.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using OS environment")
	}

	// Wallet provisioning. Multiple seed phrases are separated by ";"
	// since the phrases themselves contain spaces.
	SeedPhrases = splitList(getEnv("SEED_PHRASES", ""), ";")
	PrivateKeys = splitList(getEnv("PRIVATE_KEYS", ""), ",")
	WalletsPerSeed = getEnvInt("WALLETS_PER_SEED", 1)

	// Chain access
	PolygonRPC = getEnv("POLYGON_RPC", "https://polygon-bor-rpc.publicnode.com")
	GasLimit = uint64(getEnvInt("GAS_LIMIT", 0))

	// Approval targets
	Tokens = parseAddresses(getEnv("TOKENS", erc20.USDCAddress))
	Spenders = parseAddresses(getEnv("SPENDERS", strings.Join([]string{
		erc20.CTFExchangeAddress,
		erc20.NegRiskCTFExchangeAddress,
		erc20.NegRiskAdapterAddress,
	}, ",")))

	// Behavior
	Confirm = getEnvBool("CONFIRM", true)
	DryRun = getEnvBool("DRY_RUN", false)
	LogLevel = getEnv("LOG_LEVEL", "INFO")
}

// ── Helpers ──────────────────────────────────────────────────────────────

func splitList(raw, sep string) []string {
	out := []string{}
	for _, s := range strings.Split(raw, sep) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseAddresses(raw string) []common.Address {
	addrs := []common.Address{}
	for _, s := range splitList(raw, ",") {
		addrs = append(addrs, common.HexToAddress(s))
	}
	return addrs
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		return strings.ToLower(v) == "true"
	}
	return fallback
}

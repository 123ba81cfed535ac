// Package wallet derives signing wallets from BIP39 seed phrases.
//
// Derivation follows the standard Ethereum path m/44'/60'/0'/0/i, so the
// addresses match what MetaMask and friends produce for the same phrase.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// Wallet is one signer-capable account.
type Wallet struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
	Seed    int // which seed phrase it came from (-1 for standalone keys)
	Index   int // derivation index within that phrase
}

// String returns the address with its derivation origin.
func (w *Wallet) String() string {
	if w.Seed < 0 {
		return fmt.Sprintf("%s (imported key)", w.Address.Hex())
	}
	return fmt.Sprintf("%s (seed %d, index %d)", w.Address.Hex(), w.Seed, w.Index)
}

// DeriveWallets builds the full ordered wallet list for a batch: perSeed
// wallets per mnemonic (phrase order, then index order), followed by any
// standalone private keys.
func DeriveWallets(mnemonics, privateKeys []string, perSeed int) ([]*Wallet, error) {
	if perSeed < 1 {
		perSeed = 1
	}

	var wallets []*Wallet

	for si, mnemonic := range mnemonics {
		if !bip39.IsMnemonicValid(mnemonic) {
			return nil, fmt.Errorf("seed phrase %d is not a valid BIP39 mnemonic", si)
		}
		seed := bip39.NewSeed(mnemonic, "")

		for i := 0; i < perSeed; i++ {
			key, err := deriveKey(seed, uint32(i))
			if err != nil {
				return nil, fmt.Errorf("derive seed %d index %d: %w", si, i, err)
			}
			wallets = append(wallets, &Wallet{
				Key:     key,
				Address: crypto.PubkeyToAddress(key.PublicKey),
				Seed:    si,
				Index:   i,
			})
		}
	}

	for _, hexKey := range privateKeys {
		key, err := ParsePrivateKey(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		wallets = append(wallets, &Wallet{
			Key:     key,
			Address: crypto.PubkeyToAddress(key.PublicKey),
			Seed:    -1,
		})
	}

	return wallets, nil
}

// deriveKey walks m/44'/60'/0'/0/index from the BIP39 seed.
func deriveKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + 0,
		0,
		index,
	}

	key := master
	for _, segment := range path {
		key, err = key.Derive(segment)
		if err != nil {
			return nil, err
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return privKey.ToECDSA(), nil
}

// ParsePrivateKey parses a hex private key, with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}

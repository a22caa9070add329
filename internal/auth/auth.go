// Package auth checks that liquidity changes are signed by the pool authority.
// Requests are signed as EIP-191 personal messages.
package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnauthorized     = errors.New("signer is not the pool authority")
)

// Operation names a signed pool mutation.
type Operation string

const (
	OpAddLiquidity    Operation = "add_liquidity"
	OpRemoveLiquidity Operation = "remove_liquidity"
)

// Request is the signed content of a liquidity change. Version is the pool
// version the change applies to, so a signature cannot be replayed.
type Request struct {
	Op      Operation
	PoolID  string
	AmountA uint64
	AmountB uint64
	Version uint64
}

// Message renders the text the authority signs.
func (r Request) Message() string {
	return fmt.Sprintf("landau:%s:%s:%d:%d:%d", r.Op, strings.ToLower(r.PoolID), r.AmountA, r.AmountB, r.Version)
}

// Sign returns a 65-byte [R || S || V] signature with V in {27, 28}.
func Sign(req Request, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(req.Message())), key)
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// Recover returns the address that signed req.
func Recover(req Request, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	if normalized[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[crypto.RecoveryIDOffset])
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(req.Message())), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Authorize checks that sig over req was produced by authority.
func Authorize(req Request, sig []byte, authority common.Address) error {
	signer, err := Recover(req, sig)
	if err != nil {
		return err
	}
	if signer != authority {
		return fmt.Errorf("%w: signed by %s", ErrUnauthorized, signer.Hex())
	}
	return nil
}

// DecodeSignature parses a 0x-prefixed hex signature.
func DecodeSignature(input string) ([]byte, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return sig, nil
}

// ParseKey parses a hex private key, with or without 0x.
func ParseKey(input string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(input), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

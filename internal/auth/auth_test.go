package auth

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSignAndAuthorize(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	authority := crypto.PubkeyToAddress(key.PublicKey)

	req := Request{Op: OpAddLiquidity, PoolID: "0xABCD", AmountA: 10, AmountB: 20, Version: 4}
	require.Equal(t, "landau:add_liquidity:0xabcd:10:20:4", req.Message())

	sig, err := Sign(req, key)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	signer, err := Recover(req, sig)
	require.NoError(t, err)
	require.Equal(t, authority, signer)
	require.NoError(t, Authorize(req, sig, authority))

	decoded, err := DecodeSignature(hexutil.Encode(sig))
	require.NoError(t, err)
	require.NoError(t, Authorize(req, decoded, authority))
}

func TestAuthorizeRejects(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	authority := crypto.PubkeyToAddress(key.PublicKey)

	req := Request{Op: OpRemoveLiquidity, PoolID: "p", AmountA: 1, Version: 1}

	sig, err := Sign(req, other)
	require.NoError(t, err)
	require.ErrorIs(t, Authorize(req, sig, authority), ErrUnauthorized)

	// A signature for an older version does not cover the next one.
	sig, err = Sign(req, key)
	require.NoError(t, err)
	replay := req
	replay.Version = 2
	require.ErrorIs(t, Authorize(replay, sig, authority), ErrUnauthorized)

	require.ErrorIs(t, Authorize(req, sig[:10], authority), ErrInvalidSignature)

	_, err = DecodeSignature("zz")
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = ParseKey("0x1234")
	require.Error(t, err)
}

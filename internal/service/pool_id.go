package service

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var poolSeed = []byte("pool")

// PoolID derives the pool identifier from its ordered token pair.
func PoolID(tokenA, tokenB common.Address) string {
	return crypto.Keccak256Hash(poolSeed, tokenA.Bytes(), tokenB.Bytes()).Hex()
}

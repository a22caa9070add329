package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// parseAddress converts a flag value into common.Address.
func parseAddress(name, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("--%s is required", name)
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", name, input)
	}
	return common.HexToAddress(input), nil
}

func requirePool(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("--pool is required")
	}
	return strings.ToLower(id), nil
}

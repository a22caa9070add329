package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"landauSwap/internal/auth"
	"landauSwap/internal/service"
)

func newLiquidityCommand() *cobra.Command {
	liquidityCmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Add or remove pool reserves as the pool authority",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Credit reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLiquidity(cmd, auth.OpAddLiquidity)
		},
	}
	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Debit reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLiquidity(cmd, auth.OpRemoveLiquidity)
		},
	}

	for _, c := range []*cobra.Command{addCmd, removeCmd} {
		c.Flags().String("pool", "", "pool id")
		c.Flags().Uint64("amount-a", 0, "amount of token A")
		c.Flags().Uint64("amount-b", 0, "amount of token B")
		c.Flags().String("key", "", "authority hex private key used to sign the request")
		c.Flags().String("signature", "", "pre-computed 0x signature (instead of --key)")
	}

	liquidityCmd.AddCommand(addCmd, removeCmd)
	return liquidityCmd
}

func runLiquidity(cmd *cobra.Command, op auth.Operation) error {
	poolID, err := requirePool(mustString(cmd, "pool"))
	if err != nil {
		return err
	}
	amountA, _ := cmd.Flags().GetUint64("amount-a")
	amountB, _ := cmd.Flags().GetUint64("amount-b")
	hexKey := mustString(cmd, "key")
	hexSig := mustString(cmd, "signature")
	if (hexKey == "") == (hexSig == "") {
		return fmt.Errorf("exactly one of --key or --signature is required")
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var sig []byte
	if hexKey != "" {
		key, err := auth.ParseKey(hexKey)
		if err != nil {
			return err
		}
		// The signature covers the version the change will be applied to.
		current, err := a.svc.Get(ctx, poolID)
		if err != nil {
			return err
		}
		sig, err = auth.Sign(auth.Request{
			Op:      op,
			PoolID:  poolID,
			AmountA: amountA,
			AmountB: amountB,
			Version: current.Version,
		}, key)
		if err != nil {
			return err
		}
	} else {
		sig, err = auth.DecodeSignature(hexSig)
		if err != nil {
			return err
		}
	}

	req := service.LiquidityRequest{PoolID: poolID, AmountA: amountA, AmountB: amountB, Signature: sig}
	if op == auth.OpRemoveLiquidity {
		account, err := a.svc.RemoveLiquidity(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, account)
	}
	account, err := a.svc.AddLiquidity(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, account)
}

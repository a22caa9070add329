package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"landauSwap/internal/amm"
	"landauSwap/internal/auth"
	"landauSwap/internal/service"
)

func newPoolCommand() *cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Create and inspect pools",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Initialize an empty pool for a token pair",
		RunE:  runPoolCreate,
	}
	createCmd.Flags().String("token-a", "", "token A address")
	createCmd.Flags().String("token-b", "", "token B address")
	createCmd.Flags().String("authority", "", "pool authority address")
	createCmd.Flags().String("authority-key", "", "derive the authority from this hex private key")
	createCmd.Flags().String("curve", "rational", "price-impact curve (rational, exponential)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a pool account",
		RunE:  runPoolShow,
	}
	showCmd.Flags().String("pool", "", "pool id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every pool account",
		RunE:  runPoolList,
	}

	poolCmd.AddCommand(createCmd, showCmd, listCmd)
	return poolCmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runPoolCreate(cmd *cobra.Command, _ []string) error {
	tokenA, err := parseAddress("token-a", mustString(cmd, "token-a"))
	if err != nil {
		return err
	}
	tokenB, err := parseAddress("token-b", mustString(cmd, "token-b"))
	if err != nil {
		return err
	}
	curve, err := amm.ParseCurveType(mustString(cmd, "curve"))
	if err != nil {
		return err
	}

	var req service.InitPoolRequest
	if hexKey := mustString(cmd, "authority-key"); hexKey != "" {
		key, err := auth.ParseKey(hexKey)
		if err != nil {
			return err
		}
		req.Authority = crypto.PubkeyToAddress(key.PublicKey)
	} else {
		req.Authority, err = parseAddress("authority", mustString(cmd, "authority"))
		if err != nil {
			return err
		}
	}
	req.TokenA, req.TokenB, req.Curve = tokenA, tokenB, curve

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.svc.InitializePool(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, account)
}

func runPoolShow(cmd *cobra.Command, _ []string) error {
	poolID, err := requirePool(mustString(cmd, "pool"))
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.svc.Get(ctx, poolID)
	if err != nil {
		return err
	}
	return printJSON(cmd, account)
}

func runPoolList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.svc.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, accounts)
}

func mustString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

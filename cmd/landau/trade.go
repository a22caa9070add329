package main

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"landauSwap/internal/amm"
	"landauSwap/internal/model"
	"landauSwap/internal/service"
)

func newOrderCommand() *cobra.Command {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Submit an order into the open batch of a pool",
		RunE:  runOrder,
	}
	orderCmd.Flags().String("pool", "", "pool id")
	orderCmd.Flags().String("direction", "", "order direction (a_for_b, b_for_a)")
	orderCmd.Flags().Uint64("amount", 0, "amount paid into the pool")
	return orderCmd
}

func newSettleCommand() *cobra.Command {
	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle the open batch of a pool, or of every dirty pool with --all",
		RunE:  runSettle,
	}
	settleCmd.Flags().String("pool", "", "pool id")
	settleCmd.Flags().Bool("all", false, "settle every pool holding a dirty batch")
	return settleCmd
}

func newSettlementsCommand() *cobra.Command {
	settlementsCmd := &cobra.Command{
		Use:   "settlements",
		Short: "List recorded settlements of a pool",
		RunE:  runSettlements,
	}
	settlementsCmd.Flags().String("pool", "", "pool id")
	return settlementsCmd
}

func newQuoteCommand() *cobra.Command {
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an inflow against a pool or explicit reserves",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("pool", "", "pool id")
	quoteCmd.Flags().String("direction", "a_for_b", "order direction (a_for_b, b_for_a)")
	quoteCmd.Flags().Uint64("amount", 0, "amount paid into the pool")
	quoteCmd.Flags().Uint64("reserve-in", 0, "reserve of the paid-in asset (without --pool)")
	quoteCmd.Flags().Uint64("reserve-out", 0, "reserve of the paid-out asset (without --pool)")
	quoteCmd.Flags().String("curve", "rational", "curve used with explicit reserves")
	return quoteCmd
}

func runOrder(cmd *cobra.Command, _ []string) error {
	poolID, err := requirePool(mustString(cmd, "pool"))
	if err != nil {
		return err
	}
	direction, err := amm.ParseDirection(mustString(cmd, "direction"))
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.svc.SubmitOrder(ctx, poolID, direction, amount)
	if err != nil {
		return err
	}
	return printJSON(cmd, account)
}

func runSettle(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if all {
		result, err := service.NewScheduler(service.SchedulerConfig{}, a.svc, a.logger).Sweep(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	}

	poolID, err := requirePool(mustString(cmd, "pool"))
	if err != nil {
		return err
	}
	settlement, err := a.svc.Settle(ctx, poolID)
	if err != nil {
		return err
	}
	return printJSON(cmd, settlement)
}

func runSettlements(cmd *cobra.Command, _ []string) error {
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

	if _, err := a.svc.Get(ctx, poolID); err != nil {
		return err
	}
	settlements, err := a.settlements.ListSettlements(ctx, poolID)
	if err != nil {
		return fmt.Errorf("list settlements: %w", err)
	}
	if settlements == nil {
		settlements = []model.Settlement{}
	}
	return printJSON(cmd, settlements)
}

type quoteOutput struct {
	Direction   string `json:"direction"`
	AmountIn    uint64 `json:"amount_in"`
	ReserveIn   uint64 `json:"reserve_in"`
	ReserveOut  uint64 `json:"reserve_out"`
	AmountOut   uint64 `json:"amount_out"`
	Fee         uint64 `json:"fee"`
	FeeRate     string `json:"fee_rate"`
	Theoretical string `json:"theoretical_out"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	direction, err := amm.ParseDirection(mustString(cmd, "direction"))
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	poolID := mustString(cmd, "pool")

	var (
		trade                 amm.Trade
		reserveIn, reserveOut uint64
	)
	if poolID == "" {
		if !cmd.Flags().Changed("reserve-in") || !cmd.Flags().Changed("reserve-out") {
			return fmt.Errorf("either --pool or both --reserve-in and --reserve-out are required")
		}
		reserveIn, _ = cmd.Flags().GetUint64("reserve-in")
		reserveOut, _ = cmd.Flags().GetUint64("reserve-out")
		curve, err := amm.ParseCurveType(mustString(cmd, "curve"))
		if err != nil {
			return err
		}
		trade, err = amm.CurveFor(curve).Compute(amount, reserveIn, reserveOut)
		if err != nil {
			return err
		}
	} else {
		poolID, err = requirePool(poolID)
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
		reserveIn, reserveOut = account.State.Reserves(direction)
		trade, err = a.svc.Quote(ctx, poolID, direction, amount)
		if err != nil {
			return err
		}
	}

	summary := amm.SettlementSummary{AmountOut: trade.AmountOut, Fee: trade.Fee}
	theoretical := new(big.Int).Add(new(big.Int).SetUint64(trade.AmountOut), new(big.Int).SetUint64(trade.Fee))
	return printJSON(cmd, quoteOutput{
		Direction:   direction.String(),
		AmountIn:    amount,
		ReserveIn:   reserveIn,
		ReserveOut:  reserveOut,
		AmountOut:   trade.AmountOut,
		Fee:         trade.Fee,
		FeeRate:     summary.FeeRate().String(),
		Theoretical: decimal.NewFromBigInt(theoretical, 0).String(),
	})
}

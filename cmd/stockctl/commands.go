package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockroom/pkg/clients/stockapi"
)

func newRootCommand() *cobra.Command {
	var addr string

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Command-line client for the stockroom API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "stockroom server address")

	client := func() *stockapi.Client { return stockapi.NewClient(addr) }

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every item and its amount",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				stocks, err := client().ListStocks(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stocks)
			},
		},
		&cobra.Command{
			Use:   "get NAME",
			Short: "Show the amount on hand for one item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := client().GetStock(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{args[0]: amount})
			},
		},
		newAddCommand(client),
		newSellCommand(client),
		&cobra.Command{
			Use:   "sales",
			Short: "Show the cumulative sales total",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				total, err := client().Sales(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]float64{"sales": total})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every item and reset sales",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := client().Clear(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "cleared")
				return err
			},
		},
	)

	return root
}

func newAddCommand(client func() *stockapi.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME [AMOUNT]",
		Short: "Restock an item (amount defaults to 1)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var amount *int64
			if len(args) == 2 {
				n, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[1], err)
				}
				amount = &n
			}

			location, err := client().AddStock(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), location)
			return err
		},
	}
}

func newSellCommand(client func() *stockapi.Client) *cobra.Command {
	var (
		amount int64
		price  float64
	)

	cmd := &cobra.Command{
		Use:   "sell NAME",
		Short: "Record a sale, optionally priced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sale := stockapi.Sale{Name: args[0]}
			if cmd.Flags().Changed("amount") {
				sale.Amount = &amount
			}
			if cmd.Flags().Changed("price") {
				sale.Price = &price
			}

			location, err := client().Sell(cmd.Context(), sale)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), location)
			return err
		},
	}
	cmd.Flags().Int64Var(&amount, "amount", 1, "units sold")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price; omit for an unpriced sale")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"grouporder/internal/clients"
	"grouporder/internal/delivery"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		orderID string
		token   string
		addr    string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary of an order through the gRPC service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = os.Getenv("GROUPORDER_TOKEN")
			}
			if token == "" {
				return errors.New("a session token is required (--token or GROUPORDER_TOKEN)")
			}
			if addr == "" {
				addr = "localhost" + a.cfg.GrpcPort
			}

			client, err := clients.NewOrderServiceClient(addr, token, a.log)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			if !watch {
				view, err := client.GetSummary(ctx, orderID)
				if err != nil {
					return err
				}
				return printSummary(out, *view)
			}

			err = client.WatchSummary(ctx, orderID, func(view delivery.SummaryView) error {
				fmt.Fprintln(out)
				return printSummary(out, view)
			})
			if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&orderID, "order", "", "order id")
	cmd.Flags().StringVar(&token, "token", "", "session token (default $GROUPORDER_TOKEN)")
	cmd.Flags().StringVar(&addr, "addr", "", "gRPC address (default localhost$GRPC_PORT)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing the summary as it changes")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

// printSummary renders the order table followed by the roster.
func printSummary(w io.Writer, view delivery.SummaryView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Order %s\n", view.OrderID)
	fmt.Fprintln(tw, "PARTICIPANT\tITEMS\tSUBTOTAL")
	for _, p := range view.Participants {
		name := p.Email
		if name == "" {
			name = p.UserID
		}
		if p.IsOwner {
			name += " (owner)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, strings.Join(p.ItemNames, ", "), p.SubtotalText)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\n", view.GrandTotalText)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Roster) == 0 {
		return nil
	}
	parts := make([]string, 0, len(view.Roster))
	for _, r := range view.Roster {
		parts = append(parts, fmt.Sprintf("%s x%d", r.ItemName, r.Count))
	}
	_, err := fmt.Fprintf(w, "Roster: %s\n", strings.Join(parts, ", "))
	return err
}

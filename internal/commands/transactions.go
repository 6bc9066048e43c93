package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/store"
)

func newTransactionsCommand(gf *globalFlags) *cobra.Command {
	var account, status, since string

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List stored transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := store.TransactionFilter{AccountID: account, Status: model.Status(status)}
			if since != "" {
				t, err := time.Parse(time.DateOnly, since)
				if err != nil {
					return fmt.Errorf("invalid --since %q: want YYYY-MM-DD", since)
				}
				f.Since = t
			}

			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.svc.Transactions(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(txns) == 0 {
				fmt.Fprintln(out, "No transactions.")
				return nil
			}

			rows := make([][]string, 0, len(txns))
			for _, t := range txns {
				rows = append(rows, []string{
					t.ID,
					cli.FormatDate(t.Date),
					cli.Truncate(t.Description, 32),
					cli.FormatSignedMoney(t.Amount),
					t.Category,
					cli.FormatConfidence(t.Confidence),
					string(t.Explanation.Tier),
					string(t.Status),
				})
			}
			fmt.Fprint(out, cli.RenderTable(cli.Table{
				Title:   fmt.Sprintf("Transactions (%d)", len(txns)),
				Headers: []string{"ID", "Date", "Description", "Amount", "Category", "Conf", "Tier", "Status"},
				Rows:    rows,
				Left:    []int{1, 2, 4, 6, 7},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().StringVar(&status, "status", "", "only this status, e.g. pending-review")
	cmd.Flags().StringVar(&since, "since", "", "only transactions on or after YYYY-MM-DD")

	return cmd
}

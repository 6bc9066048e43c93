package commands

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
)

func newHistoryCommand(gf *globalFlags) *cobra.Command {
	var account string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent imports and account balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			accts, err := a.svc.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			if len(accts) > 0 {
				rows := make([][]string, 0, len(accts))
				for _, ac := range accts {
					if account != "" && ac.ID != account {
						continue
					}
					rows = append(rows, []string{ac.ID, ac.Name, string(ac.Type), cli.FormatMoney(ac.Balance)})
				}
				fmt.Fprint(out, cli.RenderTable(cli.Table{
					Title:   "Accounts",
					Headers: []string{"ID", "Name", "Type", "Balance"},
					Rows:    rows,
					Left:    []int{1, 2},
				}))
			}

			ups, err := a.svc.UploadHistory(cmd.Context(), account, limit)
			if err != nil {
				return err
			}
			if len(ups) == 0 {
				fmt.Fprintln(out, "No imports yet.")
				return nil
			}
			rows := make([][]string, 0, len(ups))
			for _, u := range ups {
				rows = append(rows, []string{
					u.CreatedAt.Local().Format("2006-01-02 15:04"),
					u.AccountID,
					cli.Truncate(u.FileName, 30),
					cli.FormatNumber(int64(u.Imported)),
					cli.FormatNumber(int64(u.Duplicates)),
					cli.FormatNumber(int64(u.ParseErrors)),
				})
			}
			fmt.Fprint(out, cli.RenderTable(cli.Table{
				Title:   "Imports",
				Headers: []string{"Imported at", "Account", "File", "New", "Duplicates", "Errors"},
				Rows:    rows,
				Left:    []int{1, 2},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum imports to show; 0 shows all")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}

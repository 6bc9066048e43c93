package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/cli"
	"github.com/cleared-dev/bankmint/internal/importer"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/service"
)

// maxRowErrors caps the row errors printed per file.
const maxRowErrors = 10

type importFlags struct {
	account     string
	accountName string
	accountType string
	keep        bool
}

func newImportCommand(gf *globalFlags) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank CSV exports",
		Long: "Import bank CSV exports. With no files, every CSV in the import\n" +
			"directory is imported and moved to import/processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, gf)
			if err != nil {
				return err
			}
			defer a.Close()
			return runImport(cmd, a, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.account, "account", model.DefaultAccountID, "account ID")
	cmd.Flags().StringVar(&flags.accountName, "account-name", "", "account display name for a new account")
	cmd.Flags().StringVar(&flags.accountType, "account-type", string(model.AccountTypeChecking), "account type: checking, savings or credit_card")
	cmd.Flags().BoolVar(&flags.keep, "keep", false, "leave files in the import directory")

	return cmd
}

type importJob struct {
	name string
	path string
	// fromDir is set for files picked up from the import directory.
	fromDir bool
}

func runImport(cmd *cobra.Command, a *app, args []string, flags importFlags) error {
	out := cmd.OutOrStdout()

	var jobs []importJob
	for _, p := range args {
		jobs = append(jobs, importJob{name: filepath.Base(p), path: p})
	}
	importDir := a.cfg.ImportDir(a.dataDir)
	if len(args) == 0 {
		files, err := importer.Scan(importDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			jobs = append(jobs, importJob{name: f.Name, path: f.Path, fromDir: true})
		}
	}
	if len(jobs) == 0 {
		fmt.Fprintf(out, "No CSV files in %s\n", importDir)
		return nil
	}

	failed := 0
	for _, job := range jobs {
		data, err := os.ReadFile(job.path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", job.path, err)
		}

		res, err := a.svc.Upload(cmd.Context(), data, service.UploadOptions{
			AccountID:   flags.account,
			AccountName: flags.accountName,
			AccountType: model.AccountType(flags.accountType),
			FileName:    job.name,
		})
		if err != nil {
			failed++
			fmt.Fprintln(out, cli.Alert("✗ "+err.Error()))
			continue
		}
		renderUpload(out, job.name, res)

		if job.fromDir && !flags.keep {
			if err := importer.MarkProcessed(importDir, job.name); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(jobs))
	}
	return nil
}

func renderUpload(w io.Writer, name string, res *service.UploadResult) {
	fmt.Fprintln(w, cli.RenderTitle("Import: "+name))

	pairs := [][2]string{
		{"Account", res.AccountID},
		{"Rows processed", cli.FormatNumber(int64(res.TotalProcessed))},
		{"Imported", cli.FormatNumber(int64(res.Imported))},
		{"Duplicates", cli.FormatNumber(int64(res.Duplicates))},
		{"Parse errors", cli.FormatNumber(int64(res.ParseErrors))},
		{"Categorized", fmt.Sprintf("%.1f%%", res.CategorizedPct)},
		{"Pending review", cli.FormatNumber(int64(res.PendingReview))},
	}
	if res.Imported > 0 {
		pairs = append(pairs,
			[2]string{"Date range", cli.FormatDate(res.DateRange.Start) + " to " + cli.FormatDate(res.DateRange.End)},
			[2]string{"Credits", cli.FormatMoney(res.AmountSummary.Credits)},
			[2]string{"Debits", cli.FormatMoney(res.AmountSummary.Debits)},
			[2]string{"Net", cli.FormatSignedMoney(res.AmountSummary.Net)},
		)
	}
	if res.Encoding != "" {
		pairs = append(pairs, [2]string{"Encoding", res.Encoding})
	}
	fmt.Fprint(w, cli.RenderKV(pairs))

	if len(res.CategoriesDetected) > 0 {
		fmt.Fprintf(w, "  %s %s\n", cli.Muted("Categories:"), strings.Join(res.CategoriesDetected, ", "))
	}

	for i, re := range res.RowErrors {
		if i == maxRowErrors {
			fmt.Fprintln(w, cli.Muted(fmt.Sprintf("  ... and %d more row errors", len(res.RowErrors)-maxRowErrors)))
			break
		}
		fmt.Fprintln(w, cli.Warn("  "+re.Error()))
	}
	fmt.Fprintln(w)
}

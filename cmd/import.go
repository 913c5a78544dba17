package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-cli/internal/importer"
	"github.com/sells-group/lead-cli/internal/model"
)

var (
	importFile      string
	importDryRun    bool
	importOwner     string
	importChunkSize int
	importPreview   int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a CSV or XLSX file",
	Long: `Parses a lead file, resolves countries/statuses/owners against the
reference tables, prints a preview, and inserts the valid rows in chunks.

Rows that fail validation (missing company name, malformed email) are
shown in the preview and skipped; they never block the rest of the file.

Examples:
  # Preview only, no inserts
  lead-cli import --file leads.csv --dry-run

  # Import, assigning unowned rows to Jane Doe
  lead-cli import --file leads.csv --owner "Jane Doe"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "import: open store")
		}
		defer st.Close() //nolint:errcheck

		refs, err := importer.LoadRefs(ctx, st)
		if err != nil {
			return eris.Wrap(err, "import: load reference tables")
		}

		session := importer.NewSession(refs)
		if err := session.ParseFile(importFile); err != nil {
			return eris.Wrap(err, "import: parse file")
		}
		zap.L().Info("parsed file",
			zap.String("file", session.FileName),
			zap.Int("rows", len(session.Rows)),
		)

		previewRows := importPreview
		if previewRows == 0 {
			previewRows = cfg.Import.PreviewRows
		}
		preview := session.Preview(previewRows)
		printPreview(preview)

		if importDryRun {
			return nil
		}

		defaultOwnerID := ""
		if importOwner != "" {
			id := refs.ResolveOwner(importOwner)
			if id == nil {
				return eris.Errorf("import: owner %q is not an assignable user", importOwner)
			}
			defaultOwnerID = *id
		}

		chunkSize := importChunkSize
		if chunkSize == 0 {
			chunkSize = cfg.Import.ChunkSize
		}
		var limiter *rate.Limiter
		if rps := cfg.Import.InsertRPS; rps > 0 {
			limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}

		sub := importer.NewSubmitter(st, chunkSize, limiter)
		report, submitErr := sub.Submit(ctx, session.Rows, defaultOwnerID)

		batch := model.ImportBatch{
			FileName: session.FileName,
			Total:    report.Total,
			Inserted: report.Inserted,
			Skipped:  report.Skipped,
			Outcome:  model.BatchOutcomeComplete,
		}
		if submitErr != nil {
			batch.Outcome = model.BatchOutcomePartial
		}
		if recErr := st.RecordImportBatch(ctx, batch); recErr != nil {
			zap.L().Warn("record import batch", zap.Error(recErr))
		}

		if submitErr != nil {
			zap.L().Error("import halted",
				zap.Int("inserted_before_failure", report.Inserted),
				zap.Int("failed_chunk", report.FailedChunk),
			)
			return eris.Wrapf(submitErr, "import: %d rows committed before failure", report.Inserted)
		}

		zap.L().Info("import complete",
			zap.String("file", session.FileName),
			zap.Int("inserted", report.Inserted),
			zap.Int("skipped", report.Skipped),
		)
		fmt.Printf("Imported %d leads (%d skipped)\n", report.Inserted, report.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to lead CSV/XLSX file (required)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and preview only, skip inserts")
	importCmd.Flags().StringVar(&importOwner, "owner", "", "full name of the importing user; unowned rows are assigned to them")
	importCmd.Flags().IntVar(&importChunkSize, "chunk-size", 0, "rows per insert request (default from config)")
	importCmd.Flags().IntVar(&importPreview, "preview", 0, "preview rows to print (default from config)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

// printPreview renders the parse preview as a table on stdout.
func printPreview(p importer.Preview) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMPANY\tCOUNTRY\tSTATUS\tOWNER\tEMAIL\tSCORE\tOK")
	for _, r := range p.Rows {
		ok := "ok"
		if r.Error != "" {
			ok = r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Company, r.Country, r.Status, r.Owner, r.Email, r.Score, ok)
	}
	w.Flush() //nolint:errcheck

	if p.Truncated {
		fmt.Printf("... showing %d of %d rows\n", len(p.Rows), p.Total)
	}
	fmt.Printf("%d rows parsed: %d valid, %d with errors\n", p.Total, p.Valid, p.Skipped)
}

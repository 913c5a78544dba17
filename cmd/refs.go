package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/importer"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Print the reference tables imports resolve against",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "refs: open store")
		}
		defer st.Close() //nolint:errcheck

		refs, err := importer.LoadRefs(ctx, st)
		if err != nil {
			return eris.Wrap(err, "refs: load reference tables")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Fprintf(w, "COUNTRIES (%d)\n", len(refs.Countries))
		for _, c := range refs.Countries {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", c.ID, c.Name, c.Code)
		}

		fmt.Fprintf(w, "STATUSES (%d)\n", len(refs.Statuses))
		for _, s := range refs.Statuses {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", s.ID, s.Name, s.SortOrder)
		}

		fmt.Fprintf(w, "ASSIGNABLE USERS (%d)\n", len(refs.Owners))
		for _, u := range refs.Owners {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", u.ID, u.FullName, u.Role)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
}

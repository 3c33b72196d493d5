package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"directory-sync-service/internal/export"
	"directory-sync-service/internal/service"
)

func newUsersCmd(o *options) *cobra.Command {
	var (
		search     string
		status     string
		acctType   string
		activeFrom string
		activeTo   string
		toCSV      bool
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Fetch and list directory users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(o)
			if err != nil {
				return err
			}

			spec := service.FilterSpec{Text: search, Status: status, AccountType: acctType}
			if activeFrom != "" {
				from, err := time.Parse("2006-01-02", activeFrom)
				if err != nil {
					return fmt.Errorf("--active-from must match YYYY-MM-DD")
				}
				spec.ActiveFrom = from
			}
			if activeTo != "" {
				to, err := time.Parse("2006-01-02", activeTo)
				if err != nil {
					return fmt.Errorf("--active-to must match YYYY-MM-DD")
				}
				spec.ActiveTo = to.Add(24*time.Hour - time.Second)
			}

			result, err := eng.dir.FetchUsers(cmd.Context())
			if err != nil {
				if result.Records > 0 {
					fmt.Fprintf(os.Stderr, "Fetch incomplete: kept %d records from %d pages\n", result.Records, result.Pages)
				}
				return err
			}

			schema, users := eng.sess.Users()
			filtered := service.FilterUsers(schema, users, spec)

			if toCSV {
				name := export.Filename("users", time.Now())
				return writeCSVFile(name, func(w io.Writer) error {
					return export.WriteUsers(w, schema, filtered)
				})
			}

			rows := make([][]string, 0, len(filtered))
			for _, u := range filtered {
				rows = append(rows, []string{
					u.Name,
					u.Email,
					u.AccountID,
					string(u.AccountType),
					u.StatusLabel(schema),
					u.LastActive.Format(),
				})
			}
			printTable(os.Stdout, []string{"Display Name", "Email", "Account ID", "Type", "Status", "Last Active"}, rows)
			fmt.Fprintf(os.Stdout, "\n%d user(s)\n", len(filtered))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring match over name, email and account id")
	cmd.Flags().StringVar(&status, "status", "", "Status filter (Active/Inactive or a raw org status)")
	cmd.Flags().StringVar(&acctType, "type", "", "Account type filter (atlassian, app, customer)")
	cmd.Flags().StringVar(&activeFrom, "active-from", "", "Lower bound of last activity (YYYY-MM-DD)")
	cmd.Flags().StringVar(&activeTo, "active-to", "", "Upper bound of last activity (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&toCSV, "csv", false, "Write the result to a CSV file instead of a table")

	return cmd
}

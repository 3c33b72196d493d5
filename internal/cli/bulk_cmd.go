package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"directory-sync-service/internal/service"
)

func newBulkCmd(o *options) *cobra.Command {
	var (
		ids   []string
		group string
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "bulk <deactivate|reactivate|add_group|remove_group>",
		Short: "Run a bulk action over selected users",
		Long:  "Fetches the user snapshot, selects the given account ids and runs the action sequentially. Item failures are accounted per user and never abort the batch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := service.BulkAction(args[0])
			if len(ids) == 0 {
				return fmt.Errorf("--ids is required")
			}

			eng, err := newEngine(o)
			if err != nil {
				return err
			}

			if _, err := eng.dir.FetchUsers(cmd.Context()); err != nil {
				return err
			}
			if missing := eng.sess.SetSelection(ids); len(missing) > 0 {
				return fmt.Errorf("unknown account ids: %s", strings.Join(missing, ", "))
			}

			if !yes {
				fmt.Fprintf(os.Stdout, "About to run %q on %d user(s). Continue? [y/N]: ", action, len(ids))
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					fmt.Fprintln(os.Stdout, "Aborted.")
					return nil
				}
			}

			result, err := eng.bulk.Execute(cmd.Context(), action, group)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Job %s finished: %d attempted, %d succeeded, %d failed\n",
				result.JobID, result.Attempted, len(result.Succeeded), len(result.Failed))
			for _, f := range result.Failed {
				fmt.Fprintf(os.Stdout, "  ✗ %s (%s): %s\n", f.Name, f.AccountID, f.Reason)
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d item(s) failed", len(result.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Account ids to act on (comma-separated)")
	cmd.Flags().StringVar(&group, "group", "", "Group name for add_group/remove_group")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"directory-sync-service/internal/export"
	"directory-sync-service/internal/model"
	"directory-sync-service/internal/service"
	"directory-sync-service/internal/session"
)

func newGroupsCmd(o *options) *cobra.Command {
	var (
		search  string
		members bool
		toCSV   bool
	)

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Fetch and list directory groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(o)
			if err != nil {
				return err
			}

			result, err := eng.dir.FetchGroups(cmd.Context())
			if err != nil {
				if result.Records > 0 {
					fmt.Fprintf(os.Stderr, "Fetch incomplete: kept %d records from %d pages\n", result.Records, result.Pages)
				}
				return err
			}

			groups := service.FilterGroups(eng.sess.Groups(), search)

			if members {
				// Участники подгружаются лениво, по одной группе.
				for _, g := range groups {
					if _, err := eng.dir.GroupMembers(cmd.Context(), g.Name); err != nil {
						fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", g.Name, err)
					}
				}
			}

			if toCSV {
				name := export.Filename("groups", time.Now())
				return writeCSVFile(name, func(w io.Writer) error {
					return export.WriteGroups(w, groups, func(groupName string) ([]model.User, bool) {
						state, cached := eng.sess.GroupMembersState(groupName)
						return cached, state == session.StateLoaded
					})
				})
			}

			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []string{g.Name, g.GroupID, strconv.Itoa(g.MemberCount)})
			}
			printTable(os.Stdout, []string{"Group Name", "Group ID", "Member Count"}, rows)
			fmt.Fprintf(os.Stdout, "\n%d group(s)\n", len(groups))

			if members {
				for _, g := range groups {
					state, cached := eng.sess.GroupMembersState(g.Name)
					if state != session.StateLoaded {
						continue
					}
					fmt.Fprintf(os.Stdout, "\n%s:\n", g.Name)
					memberRows := make([][]string, 0, len(cached))
					for _, m := range cached {
						memberRows = append(memberRows, []string{m.Name, m.Email, m.AccountID, m.StatusLabel(model.SchemaStandard)})
					}
					printTable(os.Stdout, []string{"Member Name", "Email", "Account ID", "Status"}, memberRows)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring match over group name and id")
	cmd.Flags().BoolVar(&members, "members", false, "Expand members of every listed group")
	cmd.Flags().BoolVar(&toCSV, "csv", false, "Write the result to a CSV file instead of a table")

	return cmd
}

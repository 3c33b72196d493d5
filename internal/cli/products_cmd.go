package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"directory-sync-service/internal/export"
	"directory-sync-service/internal/service"
)

func newProductsCmd(o *options) *cobra.Command {
	var (
		search string
		toCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Aggregate product access across users",
		Long:  "Fetches users and groups product entitlements into a per-product view. Requires the Organization API: the standard schema carries no product access data.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(o)
			if err != nil {
				return err
			}

			result, err := eng.dir.FetchUsers(cmd.Context())
			if err != nil {
				if result.Records > 0 {
					fmt.Fprintf(os.Stderr, "Fetch incomplete: kept %d records from %d pages\n", result.Records, result.Pages)
				}
				return err
			}

			schema, users := eng.sess.Users()
			products := service.FilterProducts(service.AggregateProducts(schema, users), search)

			if toCSV {
				name := export.Filename("products", time.Now())
				return writeCSVFile(name, func(w io.Writer) error {
					return export.WriteProducts(w, products)
				})
			}

			rows := make([][]string, 0, len(products))
			for _, p := range products {
				rows = append(rows, []string{p.Name, p.URL, strconv.Itoa(len(p.Users)), p.MostRecentActivity()})
			}
			printTable(os.Stdout, []string{"Product Name", "Product URL", "Users", "Most Recent Activity"}, rows)
			fmt.Fprintf(os.Stdout, "\n%d product(s)\n", len(products))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring match over product name, url and users")
	cmd.Flags().BoolVar(&toCSV, "csv", false, "Write the result to a CSV file instead of a table")

	return cmd
}

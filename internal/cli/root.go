// Package cli реализует консольный интерфейс поверх доменных сервисов каталога.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// options — разрешённые значения подключения: флаг > окружение > профиль.
type options struct {
	baseURL   string
	email     string
	apiToken  string
	orgAPIKey string
	orgID     string
	useOrg    bool
	profile   string
	verbose   bool
}

// Execute запускает CLI и возвращает код завершения процесса.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:           "dirsync",
		Short:         "Jira directory synchronization and query tool",
		Long:          "Command-line interface for fetching, filtering and bulk-managing Jira directory users, groups and products.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				// Файл конфигурации необязателен.
				cfg = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
			}
			p := cfg.ActiveProfile(o.profile)

			resolve(cmd, "base-url", &o.baseURL, "DIRSYNC_BASE_URL", p.BaseURL)
			resolve(cmd, "email", &o.email, "DIRSYNC_EMAIL", p.Email)
			resolve(cmd, "api-token", &o.apiToken, "DIRSYNC_API_TOKEN", p.APIToken)
			resolve(cmd, "org-api-key", &o.orgAPIKey, "DIRSYNC_ORG_API_KEY", p.OrgAPIKey)
			resolve(cmd, "org-id", &o.orgID, "DIRSYNC_ORG_ID", p.OrgID)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&o.baseURL, "base-url", "", "Jira site URL, e.g. https://acme.atlassian.net")
	rootCmd.PersistentFlags().StringVar(&o.email, "email", "", "Jira account email")
	rootCmd.PersistentFlags().StringVar(&o.apiToken, "api-token", "", "Jira API token")
	rootCmd.PersistentFlags().StringVar(&o.orgAPIKey, "org-api-key", "", "Organization API key")
	rootCmd.PersistentFlags().StringVar(&o.orgID, "org-id", "", "Organization ID")
	rootCmd.PersistentFlags().BoolVar(&o.useOrg, "org", false, "Read users through the Organization API")
	rootCmd.PersistentFlags().StringVarP(&o.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newUsersCmd(o))
	rootCmd.AddCommand(newGroupsCmd(o))
	rootCmd.AddCommand(newProductsCmd(o))
	rootCmd.AddCommand(newOrgIDCmd(o))
	rootCmd.AddCommand(newBulkCmd(o))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolve применяет порядок приоритета флаг > окружение > профиль.
func resolve(cmd *cobra.Command, flag string, target *string, envKey, profileVal string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		*target = v
		return
	}
	if profileVal != "" {
		*target = profileVal
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newOrgIDCmd(o *options) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "org-id",
		Short: "Resolve the organization ID through the Organization API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(o)
			if err != nil {
				return err
			}

			id, name, err := eng.dir.ResolveOrg(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Organization: %s\nID: %s\n", name, id)

			if !save {
				return nil
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
			}
			profileName := o.profile
			if profileName == "" {
				profileName = cfg.CurrentProfile
			}
			if profileName == "" {
				profileName = "default"
			}
			p := cfg.Profiles[profileName]
			p.OrgID = id
			cfg.Profiles[profileName] = p
			if cfg.CurrentProfile == "" {
				cfg.CurrentProfile = profileName
			}
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Saved to profile %q (%s)\n", profileName, ConfigPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the resolved ID into the active profile")

	return cmd
}

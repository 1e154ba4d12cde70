package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pawdex/app"
)

const flagOverwrite = "overwrite"

// InitCmd writes the node configuration and a default genesis document
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and genesis files",
		Long: `Write config/config.toml and config/genesis.json under --home.

Example:
  pawdexd init --home ~/.pawdex
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nc, err := getNodeContext(cmd)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)

			configFile := filepath.Join(nc.config.Home, "config", app.ConfigFileName)
			genFile := nc.config.GenesisFile()
			if !overwrite {
				for _, path := range []string{configFile, genFile} {
					if fileExists(path) {
						return fmt.Errorf("%s already exists (use --%s)", path, flagOverwrite)
					}
				}
			}

			if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
				return err
			}
			if err := nc.viper.WriteConfigAs(configFile); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			genesis := app.NewDefaultGenesisState(nc.config.Params)
			if err := genesis.Validate(); err != nil {
				return err
			}
			if err := genesis.SaveFile(genFile); err != nil {
				return fmt.Errorf("write genesis: %w", err)
			}

			nc.logger.Info("initialized node", "home", nc.config.Home)
			return printJSON(cmd, map[string]string{
				"config":  configFile,
				"genesis": genFile,
			})
		},
	}

	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing config and genesis files")
	return cmd
}

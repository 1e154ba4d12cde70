package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawdex/app"
)

const (
	flagHome      = "home"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

// configFlags maps command-line flags onto config keys
var configFlags = map[string]string{
	flagLogLevel:  "log.level",
	flagLogFormat: "log.format",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range configFlags {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

type contextKey struct{}

// nodeContext is what PersistentPreRunE resolves for every subcommand
type nodeContext struct {
	viper  *viper.Viper
	config app.Config
	logger log.Logger
}

func getNodeContext(cmd *cobra.Command) (*nodeContext, error) {
	nc, ok := cmd.Context().Value(contextKey{}).(*nodeContext)
	if !ok {
		return nil, errors.New("node context not initialized")
	}
	return nc, nil
}

// NewRootCmd creates the root command for pawdexd
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pawdexd",
		Short: "PAW DEX constant-product exchange node",
		Long: `pawdexd hosts a constant-product market maker: per-pair liquidity pools,
taker-fee collection and periodic fee distribution to liquidity providers.

State lives in a local database under --home. Commands that change state
open that database directly, so they cannot run while "pawdexd start"
holds it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			v, err := app.NewViper(home)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}

			cfg, err := app.LoadConfig(home, v)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, contextKey{}, &nodeContext{viper: v, config: cfg, logger: logger}))
			return nil
		},
	}

	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "directory for config and data")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "log format (plain|json)")

	rootCmd.AddCommand(
		InitCmd(),
		StartCmd(),
		TxCmd(),
		QueryCmd(),
		LedgerCmd(),
		DistributeCmd(),
		ExportCmd(),
		CheckInvariantsCmd(),
		AccountsCmd(),
	)

	return rootCmd
}

// openApp opens the node database, loading genesis into a fresh store
func openApp(cmd *cobra.Command, opts ...app.Option) (*app.App, error) {
	nc, err := getNodeContext(cmd)
	if err != nil {
		return nil, err
	}
	db, err := app.OpenDB(nc.config)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	dexApp, err := app.New(nc.logger, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if dexApp.Height() > 0 {
		return dexApp, nil
	}

	genesis, err := app.LoadGenesisFile(nc.config.GenesisFile())
	if err != nil {
		_ = dexApp.Close()
		return nil, fmt.Errorf("%w (run \"pawdexd init\" first)", err)
	}
	if err := dexApp.InitChain(cmd.Context(), genesis); err != nil {
		_ = dexApp.Close()
		return nil, fmt.Errorf("init chain: %w", err)
	}
	nc.logger.Info("loaded genesis", "file", nc.config.GenesisFile(), "height", dexApp.Height())
	return dexApp, nil
}

// withApp runs fn against an opened app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(*app.App) error) (err error) {
	dexApp, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dexApp.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(dexApp)
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

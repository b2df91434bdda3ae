// Command librepo-probe assembles mirrorlists from configured sources,
// ranks their mirrors by measured connect speed, and prints the result.
//
// Its command tree (root + subcommands, persistent --config/--log-level
// flags, a version subcommand) follows the teacher's cmd/mirrorctl/main.go.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mirrorkit/librepo/internal/config"
)

const defaultConfigPath = "/etc/librepo-probe/config.toml"

var (
	version = "dev"
	commit  = "unknown"

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "librepo-probe",
	Short: "Assemble and rank mirror lists for a repository",
	Long: `librepo-probe builds mirrorlists from configured sources (a single URL,
a flat mirrorlist file, or a Metalink document) and ranks their mirrors
by measured TCP/TLS connect speed.`,
}

var buildCmd = &cobra.Command{
	Use:   "build [source-names...]",
	Short: "Fetch, assemble, and rank the configured mirror sources",
	Long: `Fetches every configured source (or just the named ones), builds a
mirrorlist per source, ranks each by measured connect speed, and prints
the resulting URLs in rank order.`,
	RunE: runBuild,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE:  runValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("librepo-probe %s\n", version)
		fmt.Printf("commit: %s\n", commit)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "configuration file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "override log level (debug, info, warn, error)")
	buildCmd.Flags().Bool("no-probe", false, "skip speed ranking, print sources in configured order")
}

func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	meta, err := toml.DecodeFile(configPath, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", configPath)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("unrecognized configuration keys: %v", undecoded)
	}
	if err := cfg.ApplyEnvironmentVariables(); err != nil {
		return nil, errors.Wrap(err, "applying environment overrides")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Log.Apply(); err != nil {
		return nil, errors.Wrap(err, "applying log config")
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func runValidate(_ *cobra.Command, _ []string) error {
	if _, err := loadConfig(); err != nil {
		slog.Error("configuration invalid", "error", err)
		return err
	}
	fmt.Println("configuration is valid")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

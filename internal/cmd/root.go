package cmd

import (
	"strings"

	"github.com/Iron-Ham/warden/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Workflow gate enforcement for agent lifecycle hooks",
	Long: `Warden enforces review-gate discipline over automated coding
workflows. Lifecycle hooks invoke it on session, stop, and tool events;
it tracks gate progress in per-workflow state records and blocks
premature termination or completion until mandatory gates pass.`,

	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/warden/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/warden")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WARDEN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., WARDEN_THRESHOLDS_STOP_BLOCK_LIMIT for thresholds.stop_block_limit
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

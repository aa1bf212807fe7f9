package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inquestlab/inquest/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "inquest",
	Short: "Multi-phase research pipeline",
	Long: `Inquest answers research questions by running a four-phase pipeline:
gather web sources, analyze them into insights, validate the insights
for accuracy and bias, and synthesize a final report.

Each phase degrades gracefully when external services are unavailable,
so a report is produced even without API keys, clearly marked as
assembled from fallback heuristics.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/inquest/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
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
		viper.AddConfigPath("$HOME/.config/inquest")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("INQUEST")
	// Replace dots with underscores for nested keys in env vars
	// e.g., INQUEST_SEARCH_BRAVE_API_KEY for search.brave_api_key
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// version is the service version reported by the health endpoint and
// sent as part of the tile User-Agent.
const version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pass-image-api",
	Short: "Centered map snapshots assembled from public tile sources",
	Long: `pass-image-api fetches raster map tiles from public slippy-map tile
sources and assembles them into a single cropped PNG centered on an
arbitrary geographic point at a caller-specified pixel resolution.

Examples:
  # One-shot snapshot: 1 km around Perth as a 1024x1024 PNG
  pass-image-api fetch --lat -31.9514 --lon 115.8617 --radius 1.0 --size 1024 -o perth.png

  # Same snapshot from the Swisstopo tile source
  pass-image-api fetch --lat 46.9480 --lon 7.4474 --radius 1.0 --size 1024 --tileset swisstopo -o bern.png

  # Start the HTTP server
  pass-image-api serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pass-image-api.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-file", "", "also log to a rotating file")
	rootCmd.PersistentFlags().String("user-agent", fmt.Sprintf("pass-image-api/%s", version), "HTTP User-Agent header for tile requests")
	rootCmd.PersistentFlags().Int("concurrency", 10, "maximum tile fetches in flight per request")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("user-agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("fetch.concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pass-image-api" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pass-image-api")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// initLogger configures the global zerolog logger: console output on
// stderr, plus an optional rotating JSON file sink.
func initLogger() {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}

	var sink io.Writer = console
	if logFile := viper.GetString("log.file"); logFile != "" {
		// lumberjack handles log rotation
		sink = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			LocalTime:  true,
		})
	}

	log.Logger = zerolog.New(sink).Level(level).With().Timestamp().Logger()
}

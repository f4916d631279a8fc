package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notesai/notesai/internal/config"
	"github.com/notesai/notesai/internal/display"
	"github.com/notesai/notesai/internal/logging"
	"github.com/notesai/notesai/internal/pdftext"
	"github.com/notesai/notesai/internal/reader"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "notesai",
	Short: "Pull readable text out of lecture-note PDFs.",
	Long: `NotesAI extracts plain text from PDF lecture notes without a full PDF
parser. Three scanners of decreasing precision run in turn and the first one
that finds readable text wins.

Use it from the command line, or run "notesai serve" for the HTTP upload API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		display.ErrorMsg(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.notesai/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}

func initConfig() {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		display.Warn(fmt.Sprintf("could not load %s: %v", envFile, err))
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			display.Warn("could not determine home directory: " + err.Error())
		} else {
			viper.AddConfigPath(filepath.Join(home, ".notesai"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	config.RegisterDefaults(viper.GetViper())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if logLevel != "" {
		viper.Set("log.level", logLevel)
	}

	if err := viper.ReadInConfig(); err != nil {
		// config.yaml is optional when env vars are set
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			display.Warn("could not read config: " + err.Error())
		}
	}
}

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *log.Logger
	ex     *pdftext.Extractor
	loader *reader.Loader
}

func loadApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	ex, err := pdftext.New(cfg.Extraction.Options, logger)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}
	return &app{
		cfg:    cfg,
		log:    logger,
		ex:     ex,
		loader: reader.NewLoader(ex, cfg.Extraction.Timeout, logger),
	}, nil
}

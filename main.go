package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/president-backend/internal"
	"github.com/rocketscienceinc/president-backend/internal/config"
	"github.com/rocketscienceinc/president-backend/internal/entity"
	"github.com/rocketscienceinc/president-backend/internal/service"
)

var (
	configFile  string
	tokenUser   string
	tokenHandle string
)

var rootCmd = &cobra.Command{
	Use:   "president",
	Short: "President card game room server",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket servers",
	RunE: func(_ *cobra.Command, _ []string) error {
		conf := initConfig()
		logger := initLogger(conf)

		if err := app.RunApp(logger, conf); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}

		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development token signed with the configured secret",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf := initConfig()

		handle := tokenHandle
		if handle == "" {
			handle = tokenUser
		}

		token, err := service.NewAuthService(conf.JWTSecret).GenerateToken(entity.Identity{
			PlayerID: tokenUser,
			Handle:   handle,
		})
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		cmd.Println(token)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yml", "path to the config file")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "player id")
	tokenCmd.Flags().StringVar(&tokenHandle, "handle", "", "display name, defaults to the player id")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, tokenCmd)
}

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize config.
func initConfig() *config.Config {
	path := configFile
	if !filepath.IsAbs(path) {
		baseDir, err := os.Getwd()
		if err != nil {
			panic(fmt.Errorf("failed to get current directory: %w", err))
		}
		path = filepath.Join(baseDir, path)
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

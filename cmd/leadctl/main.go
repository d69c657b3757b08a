package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/client"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	apiURL   string
	role     string
	token    string
	email    string
	password string
	verbose  bool
	timeout  time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leadctl",
	Short: "Operate the leadflow API from a terminal",
	Long: `leadctl talks to a leadflow API as an admin or a service provider.

Authenticate with --token, or with --email and --password to log in first.
Every flag also reads its LEADFLOW_* environment variable.`,
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("LEADFLOW_API", "http://localhost:3000/api"), "API base URL")
	rootCmd.PersistentFlags().StringVarP(&role, "role", "r", envOr("LEADFLOW_ROLE", string(client.RoleProvider)), "Dashboard role: admin or provider")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LEADFLOW_TOKEN"), "Bearer token of an existing session")
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("LEADFLOW_EMAIL"), "Login email")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("LEADFLOW_PASSWORD"), "Login password")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout of one-shot commands")

	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(readAllCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// connect builds an authenticated client. Provider sessions also resolve
// their id so the private channel name is known.
func connect(ctx context.Context, log *zap.Logger) (*client.Client, error) {
	r := client.Role(role)
	if r != client.RoleAdmin && r != client.RoleProvider {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	session := client.NewSessionWithToken(r, token)
	c, err := client.New(apiURL, session,
		client.WithLogger(log),
		client.WithAuthErrorHandler(func(kind apperr.Kind, err error) {
			color.Red("✖ %s: %v", kind, err)
		}),
	)
	if err != nil {
		return nil, err
	}

	if !session.Authenticated() {
		if email == "" || password == "" {
			return nil, fmt.Errorf("either --token or --email and --password are required")
		}
		if _, err := c.Login(ctx, email, password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	if r == client.RoleProvider {
		if _, err := c.Me(ctx); err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
	}
	return c, nil
}

func statusColor(s client.LeadStatus) *color.Color {
	switch s {
	case client.StatusNew:
		return color.New(color.FgCyan)
	case client.StatusContacted:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

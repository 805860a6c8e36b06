// Command dirctl reads and edits Yandex 360 directory users from a terminal,
// using the same client as the web screens.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/pkg/logger"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const tokenEnv = "DIRCTL_TOKEN"

// Config holds the flags shared by every command.
type Config struct {
	Token    string
	ProxyURL string
	APIURL   string
	Timeout  time.Duration
	LogLevel string
}

// VerifyFlags validates the shared configuration.
func (c *Config) VerifyFlags() error {
	var g errs.Group
	if c.Token == "" {
		g.Add(errs.New("--token or %s is required", tokenEnv))
	}
	if c.ProxyURL == "" {
		g.Add(errs.New("--proxy-url is required"))
	}
	if c.APIURL == "" {
		g.Add(errs.New("--api-url is required"))
	}
	if c.Timeout <= 0 {
		g.Add(errs.New("--timeout must be positive"))
	}
	return g.Err()
}

type cli struct {
	cfg    Config
	log    *zap.Logger
	client *directory.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "dirctl",
		Short:         "Read and edit Yandex 360 directory users",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&c.cfg.Token, "token", "", "OAuth access token (default $"+tokenEnv+")")
	f.StringVar(&c.cfg.ProxyURL, "proxy-url", "http://localhost:8080", "Base URL of the directory portal server")
	f.StringVar(&c.cfg.APIURL, "api-url", yandex.DefaultAPI360URL, "Yandex 360 API base URL")
	f.DurationVar(&c.cfg.Timeout, "timeout", directory.DefaultTimeout, "Timeout of every request")
	f.StringVar(&c.cfg.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(c.whoamiCmd(), c.usersCmd())
	return rootCmd
}

func (c *cli) setup() error {
	if c.cfg.Token == "" {
		c.cfg.Token = strings.TrimSpace(os.Getenv(tokenEnv))
	}
	if err := c.cfg.VerifyFlags(); err != nil {
		return err
	}

	log, err := logger.New(c.cfg.LogLevel, false)
	if err != nil {
		return err
	}
	c.log = log

	c.client = directory.NewClient(c.cfg.Token, directory.Options{
		ProxyURL: c.cfg.ProxyURL,
		APIURL:   c.cfg.APIURL,
		Timeout:  c.cfg.Timeout,
		Logger:   log,
	})
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

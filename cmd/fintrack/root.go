package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/catalog"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	appLog "fintrack/internal/log"
	"fintrack/internal/storeclient"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	debug   bool

	cfg        *config.Client
	categories *catalog.Catalog
	logger     *appLog.Logger

	out io.Writer
	in  io.Reader
}

func newRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{v: config.NewViper(), out: out, in: in}

	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Track incomes and expenses against a fintrack store",
		Long: `fintrack records incomes and expenses in a remote store, filters
them by month and category, computes totals and exports a two-page report.

Example:
  fintrack login --email ann@example.com
  fintrack add expense --title Seeds --amount 12.50 --category farm
  fintrack list expenses --month March
  fintrack export --month March --category farm`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)
	root.SetIn(in)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/fintrack/config.yaml or ./config.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.String("api-url", "", "store API base URL")
	flags.String("token-file", "", "where the session token is kept")
	flags.String("categories-file", "", "YAML category catalog")
	flags.String("currency", "", "currency prefix for amounts")
	flags.Duration("timeout", 0, "store request timeout")

	for key, name := range map[string]string{
		"api_url":         "api-url",
		"token_file":      "token-file",
		"categories_file": "categories-file",
		"currency":        "currency",
		"timeout":         "timeout",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.addCmd(),
		a.deleteCmd(),
		a.listCmd(),
		a.totalsCmd(),
		a.exportCmd(),
		a.categoriesCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := "warn"
	if a.debug {
		level = "debug"
	}
	a.logger = cli.SetupLoggerTo(os.Stderr, level, appLog.ComponentCLI)

	cfg, err := config.LoadClient(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	cat, err := catalog.Load(cfg.CategoriesFile)
	if err != nil {
		return err
	}
	a.categories = cat
	a.logger.Debug("Loaded configuration", "api_url", cfg.APIURL, "token_file", cfg.TokenFile)
	return nil
}

// client builds a store client, installing the saved token when present.
func (a *app) client() (*storeclient.Client, error) {
	c, err := storeclient.New(storeclient.Config{
		BaseURL: a.cfg.APIURL,
		Timeout: a.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(a.cfg.TokenFile)
	switch {
	case err == nil:
		c.SetToken(tok)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	return c, nil
}

// storeError turns an authentication failure into a hint.
func storeError(err error) error {
	if storeclient.IsUnauthorized(err) {
		return errors.New("not logged in or session expired; run `fintrack login`")
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

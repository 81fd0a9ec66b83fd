package main

import (
	"github.com/rogerio-castellano/eshop/internal/config"
	"github.com/rogerio-castellano/eshop/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "eshop",
		Short:         "Product catalogue web application and its browser checks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newVerifyCmd(opts),
		newHashPasswordCmd(),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	lggr, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, lggr, nil
}

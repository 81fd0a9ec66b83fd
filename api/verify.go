package main

import (
	"fmt"

	"github.com/rogerio-castellano/eshop/internal/browser"
	"github.com/rogerio-castellano/eshop/internal/config"
	"github.com/rogerio-castellano/eshop/internal/scenario"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var (
		baseURL string
		driver  string
		product = scenario.DefaultProduct
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Create a product through the web form and check it is listed",
		Long: "Drives a browser through the product creation form of a running eshop and " +
			"checks that it lands on the product list showing the new product. " +
			"Every successful run adds a product.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, lggr, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = lggr.Sync() }()

			if driver != "" {
				cfg.Browser.Driver = driver
			}
			if baseURL == "" {
				baseURL = config.BaseURL(cfg.App.BaseURL, cfg.Server.Port)
			}

			d, err := browser.Open(cfg.Browser, lggr)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Quit(); err != nil {
					lggr.Warn("Closing browser failed", zap.Error(err))
				}
			}()

			report, err := scenario.CreateProduct{Driver: d, BaseURL: baseURL, Logger: lggr}.Run(product)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %q listed at %s (%d matching cells)\n", product.Name, report.URL, report.MatchingCells)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "application origin, e.g. http://localhost:8080 (default from app.base_url and server.port)")
	cmd.Flags().StringVar(&driver, "driver", "", "browser driver: html, selenium or rod (default from browser.driver)")
	cmd.Flags().StringVar(&product.Name, "name", product.Name, "product name to submit")
	cmd.Flags().IntVar(&product.Quantity, "quantity", product.Quantity, "product quantity to submit")
	return cmd
}

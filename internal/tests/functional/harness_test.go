package functional

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rogerio-castellano/eshop/internal/app"
	"github.com/rogerio-castellano/eshop/internal/browser"
	"github.com/rogerio-castellano/eshop/internal/config"
	"github.com/smartcontractkit/freeport"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// env is a running application and a browser session pointed at it.
type env struct {
	baseURL string
	driver  browser.Driver
	lggr    *zap.Logger
}

// startEnv serves the application on a free port and opens the configured
// browser driver. Both are released when the test ends. Set
// ESHOP_BROWSER_DRIVER to selenium or rod to use a real browser.
func startEnv(t *testing.T) *env {
	t.Helper()
	lggr := zaptest.NewLogger(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Port = takePort(t)
	cfg.RateLimit.RPS = 0
	// Every test starts with an empty catalogue.
	cfg.Storage.Driver = config.StorageMemory

	ctx, cancel := context.WithCancel(context.Background())
	a, err := app.New(ctx, cfg, lggr)
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- a.ListenAndServe(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-served)
		require.NoError(t, a.Close())
	})

	baseURL := config.BaseURL(cfg.App.BaseURL, cfg.Server.Port)
	waitReady(t, ctx, baseURL+"/healthz", lggr)

	d, err := browser.Open(cfg.Browser, lggr)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, d.Quit()) })

	return &env{baseURL: baseURL, driver: d, lggr: lggr}
}

// takePort reserves a free port for the rest of the test.
func takePort(t *testing.T) int {
	t.Helper()
	port := freeport.GetOne(t)
	t.Cleanup(func() { freeport.Return([]int{port}) })
	return port
}

func waitReady(t *testing.T, ctx context.Context, url string, lggr *zap.Logger) {
	t.Helper()
	client := &http.Client{Timeout: time.Second}
	err := retry.Do(func() error {
		resp, err := client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("healthz returned %d", resp.StatusCode)
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(50),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			lggr.Debug("Waiting for server", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	require.NoError(t, err, "server never became ready")
}

func countRows(t *testing.T, d browser.Driver, name string) int {
	t.Helper()
	cells, err := d.FindElements(browser.ByTagName, "td")
	require.NoError(t, err)
	n := 0
	for _, c := range cells {
		text, err := c.Text()
		require.NoError(t, err)
		if text == name {
			n++
		}
	}
	return n
}

// quantitiesOf returns the quantity cell of every list row named name. Rows
// render the name cell directly followed by the quantity cell.
func quantitiesOf(t *testing.T, d browser.Driver, name string) []string {
	t.Helper()
	cells, err := d.FindElements(browser.ByTagName, "td")
	require.NoError(t, err)
	var out []string
	for i := 0; i+1 < len(cells); i++ {
		text, err := cells[i].Text()
		require.NoError(t, err)
		if text != name {
			continue
		}
		qty, err := cells[i+1].Text()
		require.NoError(t, err)
		out = append(out, qty)
	}
	return out
}

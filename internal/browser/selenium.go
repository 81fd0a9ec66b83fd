package browser

import (
	"fmt"
	"strings"

	"github.com/rogerio-castellano/eshop/internal/config"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"
)

// SeleniumDriver drives Chrome through a remote WebDriver endpoint such as a
// Selenium server or chromedriver.
type SeleniumDriver struct {
	wd   selenium.WebDriver
	lggr *zap.Logger
}

var _ Driver = (*SeleniumDriver)(nil)

// NewSeleniumDriver opens a Chrome session at cfg.SeleniumURL.
func NewSeleniumDriver(cfg config.BrowserConfig, lggr *zap.Logger) (*SeleniumDriver, error) {
	if lggr == nil {
		lggr = zap.NewNop()
	}

	args := []string{"--no-sandbox", "--disable-dev-shm-usage", "--window-size=1280,1024"}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{Path: cfg.ChromeBin, Args: args})

	wd, err := selenium.NewRemote(caps, cfg.SeleniumURL)
	if err != nil {
		return nil, fmt.Errorf("open webdriver session at %s: %w", cfg.SeleniumURL, err)
	}
	if cfg.Timeout > 0 {
		if err := wd.SetPageLoadTimeout(cfg.Timeout); err != nil {
			_ = wd.Quit()
			return nil, fmt.Errorf("set page load timeout: %w", err)
		}
	}

	lggr = lggr.Named("selenium-driver")
	lggr.Debug("WebDriver session opened", zap.String("url", cfg.SeleniumURL))
	return &SeleniumDriver{wd: wd, lggr: lggr}, nil
}

func (d *SeleniumDriver) Get(url string) error {
	if err := d.wd.Get(url); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	return nil
}

func (d *SeleniumDriver) FindElement(by By, value string) (Element, error) {
	el, err := d.wd.FindElement(seleniumBy(by), value)
	if err != nil {
		return nil, wrapSeleniumError(by, value, err)
	}
	return seleniumElement{el}, nil
}

func (d *SeleniumDriver) FindElements(by By, value string) ([]Element, error) {
	els, err := d.wd.FindElements(seleniumBy(by), value)
	if err != nil {
		if isSeleniumNoSuchElement(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s=%q: %w", by, value, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, seleniumElement{el})
	}
	return out, nil
}

func (d *SeleniumDriver) CurrentURL() (string, error) { return d.wd.CurrentURL() }

func (d *SeleniumDriver) Title() (string, error) { return d.wd.Title() }

func (d *SeleniumDriver) PageSource() (string, error) { return d.wd.PageSource() }

func (d *SeleniumDriver) Quit() error {
	if err := d.wd.Quit(); err != nil {
		return fmt.Errorf("quit webdriver session: %w", err)
	}
	d.lggr.Debug("WebDriver session closed")
	return nil
}

type seleniumElement struct {
	el selenium.WebElement
}

func (e seleniumElement) Click() error { return e.el.Click() }

func (e seleniumElement) SendKeys(text string) error { return e.el.SendKeys(text) }

func (e seleniumElement) Text() (string, error) { return e.el.Text() }

func seleniumBy(by By) string {
	switch by {
	case ByID:
		return selenium.ByID
	case ByLinkText:
		return selenium.ByLinkText
	case ByTagName:
		return selenium.ByTagName
	default:
		return selenium.ByCSSSelector
	}
}

func wrapSeleniumError(by By, value string, err error) error {
	if isSeleniumNoSuchElement(err) {
		return fmt.Errorf("%w: %w", noSuchElement(by, value), err)
	}
	return fmt.Errorf("find %s=%q: %w", by, value, err)
}

// isSeleniumNoSuchElement matches the W3C "no such element" error code, which
// the client surfaces only in the error text.
func isSeleniumNoSuchElement(err error) bool {
	return strings.Contains(err.Error(), "no such element")
}

// Package browser defines the browser-automation capability used by
// scenarios, and its backends: a remote Selenium WebDriver session, a local
// Chrome driven over DevTools with rod, and an in-process HTML browser.
package browser

import (
	"errors"
	"fmt"

	"github.com/rogerio-castellano/eshop/internal/config"
	"go.uber.org/zap"
)

// By is a strategy for locating elements.
type By string

// Methods by which to find elements.
const (
	ByID          By = "id"
	ByLinkText    By = "link text"
	ByCSSSelector By = "css selector"
	ByTagName     By = "tag name"
)

var (
	// ErrNoSuchElement is wrapped by lookups that matched nothing.
	ErrNoSuchElement = errors.New("no such element")
	// ErrStaleElement is returned when an element belongs to a page that is
	// no longer loaded.
	ErrStaleElement = errors.New("stale element reference")
	// ErrNotInteractable is returned when typing into an element that does
	// not accept input.
	ErrNotInteractable = errors.New("element not interactable")
	// ErrNoPage is returned by reads before the first navigation.
	ErrNoPage = errors.New("no page loaded")
)

// Driver is a remote-controllable browser session. Every call blocks until
// the browser reports completion.
type Driver interface {
	// Get navigates to url.
	Get(url string) error
	// FindElement returns the first element matching value, or an error
	// wrapping ErrNoSuchElement.
	FindElement(by By, value string) (Element, error)
	// FindElements returns every matching element, possibly none.
	FindElements(by By, value string) ([]Element, error)
	CurrentURL() (string, error)
	Title() (string, error)
	PageSource() (string, error)
	// Quit ends the session and releases the browser.
	Quit() error
}

// Element is a located element of the current page.
type Element interface {
	Click() error
	SendKeys(text string) error
	Text() (string, error)
}

// Open starts a session with the backend named by cfg.Driver.
func Open(cfg config.BrowserConfig, lggr *zap.Logger) (Driver, error) {
	switch cfg.Driver {
	case config.BrowserHTML, "":
		return NewHTMLDriver(cfg.Timeout, lggr)
	case config.BrowserSelenium:
		return NewSeleniumDriver(cfg, lggr)
	case config.BrowserRod:
		return NewRodDriver(cfg, lggr)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}
}

func noSuchElement(by By, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrNoSuchElement, by, value)
}

// IsNoSuchElement reports whether err signals a failed element lookup.
func IsNoSuchElement(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}

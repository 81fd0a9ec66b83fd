package browser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rogerio-castellano/eshop/internal/config"
	"go.uber.org/zap"
)

const defaultRodTimeout = 10 * time.Second

// RodDriver drives a locally launched Chrome over the DevTools protocol.
type RodDriver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
	lggr     *zap.Logger
}

var _ Driver = (*RodDriver)(nil)

// NewRodDriver launches Chrome, cfg.ChromeBin when set, and opens a blank
// page.
func NewRodDriver(cfg config.BrowserConfig, lggr *zap.Logger) (*RodDriver, error) {
	if lggr == nil {
		lggr = zap.NewNop()
	}
	lggr = lggr.Named("rod-driver")

	l := launcher.New().Headless(cfg.Headless).Set("no-sandbox")
	if cfg.ChromeBin != "" {
		l = l.Bin(cfg.ChromeBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRodTimeout
	}
	lggr.Debug("Chrome launched", zap.String("control_url", controlURL))
	return &RodDriver{launcher: l, browser: b, page: page, timeout: timeout, lggr: lggr}, nil
}

func (d *RodDriver) Get(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	p := d.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s: %w", url, err)
	}
	return nil
}

func (d *RodDriver) FindElement(by By, value string) (Element, error) {
	var (
		has bool
		el  *rod.Element
		err error
	)
	if by == ByLinkText {
		has, el, err = d.page.HasR("a", linkTextPattern(value))
	} else {
		has, el, err = d.page.Has(rodSelector(by, value))
	}
	if err != nil {
		return nil, fmt.Errorf("find %s=%q: %w", by, value, err)
	}
	if !has {
		return nil, noSuchElement(by, value)
	}
	return &rodElement{d: d, el: el}, nil
}

func (d *RodDriver) FindElements(by By, value string) ([]Element, error) {
	selector := rodSelector(by, value)
	if by == ByLinkText {
		selector = "a"
	}
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s=%q: %w", by, value, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		if by == ByLinkText {
			text, err := el.Text()
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) != strings.TrimSpace(value) {
				continue
			}
		}
		out = append(out, &rodElement{d: d, el: el})
	}
	return out, nil
}

func (d *RodDriver) CurrentURL() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *RodDriver) Title() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (d *RodDriver) PageSource() (string, error) { return d.page.HTML() }

func (d *RodDriver) Quit() error {
	err := d.browser.Close()
	d.launcher.Kill()
	d.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("close chrome: %w", err)
	}
	d.lggr.Debug("Chrome closed")
	return nil
}

type rodElement struct {
	d  *RodDriver
	el *rod.Element
}

// Click waits for the resulting navigation when the element is a link or a
// submit control.
func (e *rodElement) Click() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.d.timeout)
	defer cancel()

	var wait func()
	if e.navigates() {
		wait = e.d.page.Context(ctx).WaitNavigation(proto.PageLifecycleEventNameLoad)
	}
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if wait != nil {
		wait()
	}
	return nil
}

func (e *rodElement) SendKeys(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.d.timeout)
	defer cancel()
	return e.el.Context(ctx).Input(text)
}

func (e *rodElement) Text() (string, error) { return e.el.Text() }

func (e *rodElement) navigates() bool {
	node, err := e.el.Describe(0, false)
	if err != nil {
		return false
	}
	switch strings.ToLower(node.NodeName) {
	case "a":
		href, err := e.el.Attribute("href")
		return err == nil && href != nil
	case "button":
		t, err := e.el.Attribute("type")
		return err == nil && (t == nil || strings.EqualFold(*t, "submit"))
	case "input":
		t, err := e.el.Attribute("type")
		return err == nil && t != nil && (strings.EqualFold(*t, "submit") || strings.EqualFold(*t, "image"))
	}
	return false
}

func rodSelector(by By, value string) string {
	switch by {
	case ByID:
		return fmt.Sprintf("[id=%q]", value)
	default:
		return value
	}
}

func linkTextPattern(text string) string {
	return `^\s*` + regexp.QuoteMeta(strings.TrimSpace(text)) + `\s*$`
}

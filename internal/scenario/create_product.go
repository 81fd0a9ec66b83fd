// Package scenario holds browser scenarios run against a deployed eshop web
// application.
package scenario

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rogerio-castellano/eshop/internal/browser"
	"go.uber.org/zap"
)

// Markup the create-product scenario relies on.
const (
	ListPath        = "/product/list"
	CreateLinkText  = "Create Product"
	NameInputID     = "nameInput"
	QuantityInputID = "quantityInput"
	SubmitSelector  = "button[type='submit']"
	ListTitle       = "Product List"
)

// Step names used in errors and logs.
const (
	StepOpenList      = "open product list"
	StepOpenForm      = "open creation form"
	StepEnterName     = "enter name"
	StepEnterQuantity = "enter quantity"
	StepSubmit        = "submit form"
	StepCheckTitle    = "check title"
	StepCheckSource   = "check page source"
	StepCheckCells    = "check table cells"
)

// Product is the data submitted through the creation form.
type Product struct {
	Name     string
	Quantity int
}

// DefaultProduct is submitted when no other product is given.
var DefaultProduct = Product{Name: "Test Product", Quantity: 10}

// Report describes the page observed after a successful run.
type Report struct {
	URL           string
	Title         string
	MatchingCells int
}

// CreateProduct creates a product through the web form and verifies that the
// application lands back on the product list showing it. Runs are not
// idempotent: every successful run adds a product.
type CreateProduct struct {
	Driver  browser.Driver
	BaseURL string
	Logger  *zap.Logger
}

// Run executes the scenario. The first failing step aborts the run and is
// returned as a *ReachabilityError, *MissingElementError or *AssertionError.
func (s CreateProduct) Run(p Product) (*Report, error) {
	lggr := s.Logger
	if lggr == nil {
		lggr = zap.NewNop()
	}
	lggr = lggr.With(zap.String("scenario", "create product"), zap.String("name", p.Name), zap.Int("quantity", p.Quantity))
	listURL := strings.TrimSuffix(s.BaseURL, "/") + ListPath
	quantity := strconv.Itoa(p.Quantity)

	lggr.Debug("Step", zap.String("step", StepOpenList), zap.String("url", listURL))
	if err := s.Driver.Get(listURL); err != nil {
		return nil, &ReachabilityError{Step: StepOpenList, URL: listURL, Err: err}
	}

	lggr.Debug("Step", zap.String("step", StepOpenForm))
	if err := s.click(StepOpenForm, browser.ByLinkText, CreateLinkText); err != nil {
		return nil, err
	}

	lggr.Debug("Step", zap.String("step", StepEnterName))
	if err := s.enter(StepEnterName, NameInputID, p.Name); err != nil {
		return nil, err
	}
	lggr.Debug("Step", zap.String("step", StepEnterQuantity))
	if err := s.enter(StepEnterQuantity, QuantityInputID, quantity); err != nil {
		return nil, err
	}

	lggr.Debug("Step", zap.String("step", StepSubmit))
	if err := s.click(StepSubmit, browser.ByCSSSelector, SubmitSelector); err != nil {
		return nil, err
	}

	report := &Report{}
	if u, err := s.Driver.CurrentURL(); err == nil {
		report.URL = u
	}
	lggr.Debug("Step", zap.String("step", StepCheckTitle), zap.String("url", report.URL))
	title, err := s.Driver.Title()
	if err != nil {
		return nil, s.driverFault(StepCheckTitle, err)
	}
	if title != ListTitle {
		return nil, &AssertionError{Step: StepCheckTitle, Check: "page title", Expected: ListTitle, Actual: title}
	}
	report.Title = title

	lggr.Debug("Step", zap.String("step", StepCheckSource))
	source, err := s.Driver.PageSource()
	if err != nil {
		return nil, s.driverFault(StepCheckSource, err)
	}
	if !strings.Contains(source, p.Name) {
		return nil, &AssertionError{Step: StepCheckSource, Check: "page source contains name", Expected: p.Name, Actual: excerpt(source)}
	}
	if !strings.Contains(source, quantity) {
		return nil, &AssertionError{Step: StepCheckSource, Check: "page source contains quantity", Expected: quantity, Actual: excerpt(source)}
	}

	lggr.Debug("Step", zap.String("step", StepCheckCells))
	cells, err := s.Driver.FindElements(browser.ByTagName, "td")
	if err != nil {
		return nil, s.driverFault(StepCheckCells, err)
	}
	var texts []string
	for _, cell := range cells {
		text, err := cell.Text()
		if err != nil {
			return nil, s.driverFault(StepCheckCells, err)
		}
		if text == p.Name {
			report.MatchingCells++
		}
		texts = append(texts, text)
	}
	if report.MatchingCells == 0 {
		return nil, &AssertionError{Step: StepCheckCells, Check: "table cell text", Expected: p.Name, Actual: excerpt(strings.Join(texts, " | "))}
	}

	lggr.Info("Product created through the web form", zap.String("url", report.URL), zap.Int("matching_cells", report.MatchingCells))
	return report, nil
}

func (s CreateProduct) click(step string, by browser.By, value string) error {
	el, err := s.find(step, by, value)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return s.driverFault(step, err)
	}
	return nil
}

func (s CreateProduct) enter(step, id, text string) error {
	el, err := s.find(step, browser.ByID, id)
	if err != nil {
		return err
	}
	if err := el.SendKeys(text); err != nil {
		return s.driverFault(step, err)
	}
	return nil
}

func (s CreateProduct) find(step string, by browser.By, value string) (browser.Element, error) {
	el, err := s.Driver.FindElement(by, value)
	if err == nil {
		return el, nil
	}
	if browser.IsNoSuchElement(err) {
		return nil, &MissingElementError{Step: step, By: by, Value: value, Err: err}
	}
	return nil, s.driverFault(step, err)
}

func (s CreateProduct) driverFault(step string, err error) error {
	u, uerr := s.Driver.CurrentURL()
	if uerr != nil {
		u = strings.TrimSuffix(s.BaseURL, "/") + ListPath
	}
	return &ReachabilityError{Step: step, URL: u, Err: err}
}

const maxExcerpt = 200

func excerpt(s string) string {
	if len(s) <= maxExcerpt {
		return s
	}
	cut := maxExcerpt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

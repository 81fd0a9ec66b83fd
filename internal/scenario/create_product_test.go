package scenario

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rogerio-castellano/eshop/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDriver serves a scripted list page after the form is submitted.
type fakeDriver struct {
	getErr    error
	clickErr  error
	titleErr  error
	missing   string
	title     string
	source    string
	cells     []string
	calls     []string
	submitted bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		title:  "Product List",
		source: "<html><td>Test Product</td><td>10</td></html>",
		cells:  []string{"Test Product", "10"},
	}
}

func (d *fakeDriver) Get(url string) error {
	d.calls = append(d.calls, "get "+url)
	return d.getErr
}

func (d *fakeDriver) FindElement(by browser.By, value string) (browser.Element, error) {
	key := fmt.Sprintf("%s=%s", by, value)
	d.calls = append(d.calls, "find "+key)
	if key == d.missing {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, key)
	}
	return &fakeElement{d: d, key: key}, nil
}

func (d *fakeDriver) FindElements(by browser.By, value string) ([]browser.Element, error) {
	d.calls = append(d.calls, fmt.Sprintf("find all %s=%s", by, value))
	var out []browser.Element
	for _, c := range d.cells {
		out = append(out, &fakeElement{d: d, text: c})
	}
	return out, nil
}

func (d *fakeDriver) CurrentURL() (string, error) { return "http://shop.test/product/list", nil }

func (d *fakeDriver) Title() (string, error) {
	if d.titleErr != nil {
		return "", d.titleErr
	}
	if !d.submitted {
		return "Create New Product", nil
	}
	return d.title, nil
}

func (d *fakeDriver) PageSource() (string, error) { return d.source, nil }

func (d *fakeDriver) Quit() error { return nil }

type fakeElement struct {
	d    *fakeDriver
	key  string
	text string
}

func (e *fakeElement) Click() error {
	e.d.calls = append(e.d.calls, "click")
	if e.d.clickErr != nil {
		return e.d.clickErr
	}
	if e.key == "css selector="+SubmitSelector {
		e.d.submitted = true
	}
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.d.calls = append(e.d.calls, "keys "+text)
	return nil
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func TestCreateProduct_Run(t *testing.T) {
	d := newFakeDriver()
	s := CreateProduct{Driver: d, BaseURL: "http://shop.test:8080/", Logger: zaptest.NewLogger(t)}

	report, err := s.Run(DefaultProduct)
	require.NoError(t, err)

	assert.Equal(t, &Report{URL: "http://shop.test/product/list", Title: "Product List", MatchingCells: 1}, report)
	assert.Equal(t, []string{
		"get http://shop.test:8080/product/list",
		"find link text=Create Product",
		"click",
		"find id=nameInput",
		"keys Test Product",
		"find id=quantityInput",
		"keys 10",
		"find css selector=button[type='submit']",
		"click",
		"find all tag name=td",
	}, d.calls)
}

func TestCreateProduct_CountsEveryMatchingCell(t *testing.T) {
	d := newFakeDriver()
	d.cells = []string{"Test Product", "10", "Test Product", "10", "Test Product (old)"}

	report, err := CreateProduct{Driver: d, BaseURL: "http://shop.test"}.Run(DefaultProduct)
	require.NoError(t, err)
	assert.Equal(t, 2, report.MatchingCells)
}

func TestCreateProduct_Failures(t *testing.T) {
	driverDown := errors.New("connection refused")

	tests := []struct {
		name     string
		product  Product
		setup    func(*fakeDriver)
		wantStep string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "list unreachable",
			setup:    func(d *fakeDriver) { d.getErr = driverDown },
			wantStep: StepOpenList,
			check: func(t *testing.T, err error) {
				var re *ReachabilityError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "http://shop.test/product/list", re.URL)
				assert.ErrorIs(t, err, driverDown)
			},
		},
		{
			name:     "create link missing",
			setup:    func(d *fakeDriver) { d.missing = "link text=Create Product" },
			wantStep: StepOpenForm,
			check:    requireMissing(browser.ByLinkText, CreateLinkText),
		},
		{
			name:     "name input missing",
			setup:    func(d *fakeDriver) { d.missing = "id=nameInput" },
			wantStep: StepEnterName,
			check:    requireMissing(browser.ByID, NameInputID),
		},
		{
			name:     "quantity input missing",
			setup:    func(d *fakeDriver) { d.missing = "id=quantityInput" },
			wantStep: StepEnterQuantity,
			check:    requireMissing(browser.ByID, QuantityInputID),
		},
		{
			name:     "submit button missing",
			setup:    func(d *fakeDriver) { d.missing = "css selector=button[type='submit']" },
			wantStep: StepSubmit,
			check:    requireMissing(browser.ByCSSSelector, SubmitSelector),
		},
		{
			name:     "click fails",
			setup:    func(d *fakeDriver) { d.clickErr = driverDown },
			wantStep: StepOpenForm,
			check: func(t *testing.T, err error) {
				var re *ReachabilityError
				require.ErrorAs(t, err, &re)
				assert.ErrorIs(t, err, driverDown)
			},
		},
		{
			name:     "title unreadable",
			setup:    func(d *fakeDriver) { d.titleErr = driverDown },
			wantStep: StepCheckTitle,
			check: func(t *testing.T, err error) {
				var re *ReachabilityError
				require.ErrorAs(t, err, &re)
			},
		},
		{
			name:     "form shown again",
			setup:    func(d *fakeDriver) { d.title = "Create New Product" },
			wantStep: StepCheckTitle,
			check:    requireAssertion("Product List", "Create New Product"),
		},
		{
			name:     "name absent from source",
			setup:    func(d *fakeDriver) { d.source = "<td>10</td>" },
			wantStep: StepCheckSource,
			check:    requireAssertion("Test Product", "<td>10</td>"),
		},
		{
			name:     "quantity absent from source",
			product:  Product{Name: "Widget", Quantity: 7},
			setup:    func(d *fakeDriver) { d.source = "<td>Widget</td>" },
			wantStep: StepCheckSource,
			check:    requireAssertion("7", "<td>Widget</td>"),
		},
		{
			name: "name only echoed outside the table",
			setup: func(d *fakeDriver) {
				d.source = `<div class="error">Test Product</div><td>Test Products</td><td>10</td>`
				d.cells = []string{"Test Products", "10"}
			},
			wantStep: StepCheckCells,
			check:    requireAssertion("Test Product", "Test Products | 10"),
		},
		{
			name:     "empty table",
			setup:    func(d *fakeDriver) { d.cells = nil },
			wantStep: StepCheckCells,
			check:    requireAssertion("Test Product", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			tt.setup(d)
			product := tt.product
			if product == (Product{}) {
				product = DefaultProduct
			}

			report, err := CreateProduct{Driver: d, BaseURL: "http://shop.test", Logger: zaptest.NewLogger(t)}.Run(product)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.Equal(t, tt.wantStep, stepOf(err))
			tt.check(t, err)
		})
	}
}

func TestCreateProduct_StopsAtFirstFailure(t *testing.T) {
	d := newFakeDriver()
	d.missing = "id=nameInput"

	_, err := CreateProduct{Driver: d, BaseURL: "http://shop.test"}.Run(DefaultProduct)
	require.Error(t, err)
	assert.Equal(t, []string{
		"get http://shop.test/product/list",
		"find link text=Create Product",
		"click",
		"find id=nameInput",
	}, d.calls)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t,
		`check title: page title: expected "Product List", got "Create New Product"`,
		(&AssertionError{Step: StepCheckTitle, Check: "page title", Expected: "Product List", Actual: "Create New Product"}).Error())
	assert.Equal(t,
		`enter name: element id="nameInput" not found`,
		(&MissingElementError{Step: StepEnterName, By: browser.ByID, Value: "nameInput"}).Error())
	assert.Contains(t,
		(&ReachabilityError{Step: StepOpenList, URL: "http://x/product/list", Err: errors.New("refused")}).Error(),
		"refused")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short"))

	prefix := strings.Repeat("a", maxExcerpt-1)
	got := excerpt(prefix + "éclair" + strings.Repeat("b", 50))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, prefix+"...", got)

	got = excerpt(strings.Repeat("é", maxExcerpt))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", maxExcerpt/2)+"...", got)
}

func requireMissing(by browser.By, value string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		var me *MissingElementError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, by, me.By)
		assert.Equal(t, value, me.Value)
		assert.ErrorIs(t, err, browser.ErrNoSuchElement)
	}
}

func requireAssertion(expected, actual string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		var ae *AssertionError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, expected, ae.Expected)
		assert.Equal(t, actual, ae.Actual)
	}
}

func stepOf(err error) string {
	var (
		re *ReachabilityError
		me *MissingElementError
		ae *AssertionError
	)
	switch {
	case errors.As(err, &re):
		return re.Step
	case errors.As(err, &me):
		return me.Step
	case errors.As(err, &ae):
		return ae.Step
	}
	return ""
}

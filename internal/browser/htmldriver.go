package browser

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// HTMLDriver is an in-process browser without a JavaScript engine. It loads
// pages over HTTP, keeps cookies, follows links and submits forms.
type HTMLDriver struct {
	client *http.Client
	lggr   *zap.Logger

	current *url.URL
	doc     *html.Node
}

var _ Driver = (*HTMLDriver)(nil)

// NewHTMLDriver returns a driver whose requests time out after timeout.
// A zero timeout means no limit.
func NewHTMLDriver(timeout time.Duration, lggr *zap.Logger) (*HTMLDriver, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if lggr == nil {
		lggr = zap.NewNop()
	}
	return &HTMLDriver{
		client: &http.Client{Jar: jar, Timeout: timeout},
		lggr:   lggr.Named("html-driver"),
	}, nil
}

func (d *HTMLDriver) Get(rawURL string) error {
	u, err := d.resolve(rawURL)
	if err != nil {
		return err
	}
	return d.load(http.MethodGet, u, nil)
}

func (d *HTMLDriver) FindElement(by By, value string) (Element, error) {
	nodes, err := d.find(by, value, true)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, noSuchElement(by, value)
	}
	return &htmlElement{d: d, doc: d.doc, n: nodes[0]}, nil
}

func (d *HTMLDriver) FindElements(by By, value string) ([]Element, error) {
	nodes, err := d.find(by, value, false)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, &htmlElement{d: d, doc: d.doc, n: n})
	}
	return elems, nil
}

func (d *HTMLDriver) CurrentURL() (string, error) {
	if d.current == nil {
		return "", ErrNoPage
	}
	return d.current.String(), nil
}

func (d *HTMLDriver) Title() (string, error) {
	if d.doc == nil {
		return "", ErrNoPage
	}
	var title *html.Node
	walk(d.doc, func(n *html.Node) bool {
		if title != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			title = n
		}
		return true
	})
	if title == nil {
		return "", nil
	}
	return strings.TrimSpace(textContent(title)), nil
}

func (d *HTMLDriver) PageSource() (string, error) {
	if d.doc == nil {
		return "", ErrNoPage
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

func (d *HTMLDriver) Quit() error {
	d.client.CloseIdleConnections()
	d.doc = nil
	d.current = nil
	return nil
}

func (d *HTMLDriver) resolve(rawURL string) (*url.URL, error) {
	var (
		u   *url.URL
		err error
	)
	if d.current != nil {
		u, err = d.current.Parse(rawURL)
	} else {
		u, err = url.Parse(rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url %q is not absolute", rawURL)
	}
	return u, nil
}

// load performs a request and replaces the current page with the response,
// whatever its status, the way a browser renders error pages.
func (d *HTMLDriver) load(method string, u *url.URL, form url.Values) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", resp.Request.URL, err)
	}
	d.current = resp.Request.URL
	d.doc = doc
	d.lggr.Debug("Page loaded",
		zap.String("method", method),
		zap.String("url", d.current.String()),
		zap.Int("status", resp.StatusCode))
	return nil
}

func (d *HTMLDriver) find(by By, value string, first bool) ([]*html.Node, error) {
	if d.doc == nil {
		return nil, ErrNoPage
	}

	var match func(*html.Node) bool
	switch by {
	case ByID:
		match = func(n *html.Node) bool { return attr(n, "id") == value }
	case ByTagName:
		tag := strings.ToLower(value)
		match = func(n *html.Node) bool { return n.Data == tag }
	case ByLinkText:
		match = func(n *html.Node) bool {
			return n.Data == "a" && visibleText(n) == strings.TrimSpace(value)
		}
	case ByCSSSelector:
		sel, err := compileSelector(value)
		if err != nil {
			return nil, err
		}
		match = sel.Match
	default:
		return nil, fmt.Errorf("unsupported locator strategy %q", by)
	}

	var out []*html.Node
	walk(d.doc, func(n *html.Node) bool {
		if first && len(out) > 0 {
			return false
		}
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		return true
	})
	return out, nil
}

func (d *HTMLDriver) submit(form, submitter *html.Node) error {
	values := formValues(form, submitter)

	method := strings.ToUpper(attr(form, "method"))
	action := attr(form, "action")
	if submitter != nil {
		if v, ok := lookupAttr(submitter, "formaction"); ok {
			action = v
		}
		if v, ok := lookupAttr(submitter, "formmethod"); ok {
			method = strings.ToUpper(v)
		}
	}
	if method != http.MethodPost {
		method = http.MethodGet
	}

	target, err := d.resolve(action)
	if err != nil {
		return err
	}
	if method == http.MethodGet {
		target.RawQuery = values.Encode()
		return d.load(method, target, nil)
	}
	return d.load(method, target, values)
}

type htmlElement struct {
	d   *HTMLDriver
	doc *html.Node
	n   *html.Node
}

func (e *htmlElement) Click() error {
	if e.doc != e.d.doc {
		return ErrStaleElement
	}
	if isDisabled(e.n) {
		return nil
	}

	switch {
	case e.n.Data == "a":
		href, ok := lookupAttr(e.n, "href")
		if !ok {
			return nil
		}
		return e.d.Get(href)
	case isSubmitControl(e.n):
		form := closest(e.n, "form")
		if form == nil {
			return nil
		}
		return e.d.submit(form, e.n)
	}
	return nil
}

func (e *htmlElement) SendKeys(text string) error {
	if e.doc != e.d.doc {
		return ErrStaleElement
	}
	if !isEditable(e.n) {
		return fmt.Errorf("%w: <%s>", ErrNotInteractable, e.n.Data)
	}
	current, ok := lookupAttr(e.n, "value")
	if !ok && e.n.Data == "textarea" {
		current = textContent(e.n)
	}
	setAttr(e.n, "value", current+text)
	return nil
}

func (e *htmlElement) Text() (string, error) {
	if e.doc != e.d.doc {
		return "", ErrStaleElement
	}
	return visibleText(e.n), nil
}

func formValues(form, submitter *html.Node) url.Values {
	values := url.Values{}
	walk(form, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n == form {
			return true
		}
		name, ok := lookupAttr(n, "name")
		if !ok || name == "" || isDisabled(n) {
			return true
		}

		switch n.Data {
		case "input":
			switch inputType(n) {
			case "checkbox", "radio":
				if _, checked := lookupAttr(n, "checked"); checked {
					v, ok := lookupAttr(n, "value")
					if !ok {
						v = "on"
					}
					values.Add(name, v)
				}
			case "submit", "image", "button", "reset":
				if n == submitter {
					values.Add(name, attr(n, "value"))
				}
			case "file":
			default:
				values.Add(name, attr(n, "value"))
			}
		case "button":
			if n == submitter {
				values.Add(name, attr(n, "value"))
			}
		case "textarea":
			v, ok := lookupAttr(n, "value")
			if !ok {
				v = textContent(n)
			}
			values.Add(name, v)
		case "select":
			if v, ok := selectedOption(n); ok {
				values.Add(name, v)
			}
			return false
		}
		return true
	})
	return values
}

func selectedOption(sel *html.Node) (string, bool) {
	var first, chosen *html.Node
	walk(sel, func(n *html.Node) bool {
		if chosen != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "option" {
			if first == nil {
				first = n
			}
			if _, ok := lookupAttr(n, "selected"); ok {
				chosen = n
			}
		}
		return true
	})
	if chosen == nil {
		chosen = first
	}
	if chosen == nil {
		return "", false
	}
	if v, ok := lookupAttr(chosen, "value"); ok {
		return v, true
	}
	return strings.TrimSpace(textContent(chosen)), true
}

func isSubmitControl(n *html.Node) bool {
	switch n.Data {
	case "button":
		t := strings.ToLower(attr(n, "type"))
		return t == "" || t == "submit"
	case "input":
		t := inputType(n)
		return t == "submit" || t == "image"
	}
	return false
}

func isEditable(n *html.Node) bool {
	if isDisabled(n) {
		return false
	}
	if _, ro := lookupAttr(n, "readonly"); ro {
		return false
	}
	switch n.Data {
	case "textarea":
		return true
	case "input":
		switch inputType(n) {
		case "checkbox", "radio", "submit", "image", "button", "reset", "file", "hidden":
			return false
		}
		return true
	}
	return false
}

func inputType(n *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(attr(n, "type")))
	if t == "" {
		return "text"
	}
	return t
}

func isDisabled(n *html.Node) bool {
	_, ok := lookupAttr(n, "disabled")
	return ok
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func closest(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

// walk visits n and its descendants in document order. The children of a
// node are skipped when fn returns false for it.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"caption": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tbody": true, "tfoot": true, "thead": true, "tr": true,
	"ul": true,
}

// visibleText renders n the way a browser reports element text: adjacent
// inline text is joined without a separator, block elements and <br> start
// new lines, table cells are separated by a space, and whitespace inside each
// line is collapsed. Script, style and template content is skipped.
func visibleText(n *html.Node) string {
	var lines []string
	var line strings.Builder
	breakLine := func() {
		lines = append(lines, line.String())
		line.Reset()
	}

	var collect func(*html.Node)
	collect = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			line.WriteString(c.Data)
			return
		case html.ElementNode:
			switch {
			case c.Data == "script" || c.Data == "style" || c.Data == "template":
				return
			case c.Data == "br":
				breakLine()
				return
			case c.Data == "td" || c.Data == "th":
				line.WriteByte(' ')
			case blockElements[c.Data] && c != n:
				breakLine()
				defer breakLine()
			}
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			collect(ch)
		}
	}
	collect(n)
	breakLine()

	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

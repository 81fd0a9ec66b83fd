package browser

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const selectorFixture = `<!DOCTYPE html>
<html><head><title>t</title></head><body>
<div id="main" class="card wide">
  <form method="post" action="/save">
    <input id="nameInput" name="productName" type="text">
    <button type="submit" class="btn primary">Save</button>
    <button type="button">Cancel</button>
  </form>
  <p data-role="note">hello</p>
</div>
<span class="btn">outside</span>
</body></html>`

func TestHTMLDriver_FindByCSSSelector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, selectorFixture)
	}))
	t.Cleanup(srv.Close)

	d, err := NewHTMLDriver(5*time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, d.Get(srv.URL))

	tests := []struct {
		name     string
		selector string
		want     []string
	}{
		{"submit button", "button[type='submit']", []string{"Save"}},
		{"child of id", "#main > p", []string{"hello"}},
		{"class", ".btn", []string{"Save", "outside"}},
		{"descendant", "div form button", []string{"Save", "Cancel"}},
		{"group", "p, span", []string{"hello", "outside"}},
		{"no match", "table td", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			els, err := d.FindElements(ByCSSSelector, tt.selector)
			require.NoError(t, err)

			var got []string
			for _, el := range els {
				text, err := el.Text()
				require.NoError(t, err)
				got = append(got, text)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	for _, s := range []string{"", "button[type='submit'", "div >"} {
		t.Run("invalid "+s, func(t *testing.T) {
			_, err := d.FindElement(ByCSSSelector, s)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNoSuchElement)
		})
	}
}

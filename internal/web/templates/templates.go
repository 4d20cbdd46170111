// Package templates holds the HTML fragments returned to HTMX requests.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

// ErrorAlert renders a dismissible error box.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		b.WriteString(`<p class="alert-message">` + templ.EscapeString(message) + `</p>`)
		if action != "" {
			b.WriteString(`<p class="alert-action">` + templ.EscapeString(action) + `</p>`)
		}
		if code != "" {
			b.WriteString(`<p class="alert-code">Code: ` + templ.EscapeString(code) + `</p>`)
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ValidationSummary lists required fields that are not mapped yet, or
// confirms the mapping is ready.
func ValidationSummary(v core.Validation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		if v.Ready() {
			b.WriteString(`<div id="validation" class="validation validation-ready">All required fields are mapped.</div>`)
		} else {
			b.WriteString(`<div id="validation" class="validation validation-missing"><p>Map these required fields before importing:</p><ul>`)
			for _, f := range v.MissingRequired {
				label := f.Label
				if label == "" {
					label = f.Name
				}
				b.WriteString(`<li>` + templ.EscapeString(label) + `</li>`)
			}
			b.WriteString(`</ul></div>`)
		}
		if n := len(v.UnmappedHeaders); n > 0 {
			fmt.Fprintf(&b, `<p class="validation-skipped">%d column(s) will be skipped.</p>`, n)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Notices renders the messages collected during an import.
func Notices(notices []core.Notice) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<ul id="notices" class="notices">`)
		for _, n := range notices {
			b.WriteString(`<li class="notice notice-` + templ.EscapeString(n.Level) + `">` + templ.EscapeString(n.Message) + `</li>`)
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// SessionPanel renders the state of an import session.
func SessionPanel(v core.SessionView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="import-session" data-session-id="` + templ.EscapeString(v.ID) + `" data-state="` + templ.EscapeString(string(v.State)) + `">`)
		if v.FileName != "" {
			b.WriteString(`<h3>` + templ.EscapeString(v.FileName) + ` <small>` + strconv.Itoa(v.RowCount) + ` rows</small></h3>`)
		}
		if v.Hint != "" {
			b.WriteString(`<p class="import-error">` + templ.EscapeString(v.Hint) + `</p>`)
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		if v.Validation != nil {
			if err := ValidationSummary(*v.Validation).Render(ctx, w); err != nil {
				return err
			}
		}
		if err := Notices(v.Notices).Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

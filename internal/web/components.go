package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/stockfile/internal/core"
)

// errorAlert is the HTMX error fragment swapped into the page's alert slot.
func errorAlert(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="font-semibold">%s</p><p class="text-sm">%s</p><span class="text-xs opacity-70">Code: %s</span></div>`,
			templ.EscapeString(msg.Message),
			templ.EscapeString(msg.Action),
			templ.EscapeString(msg.Code),
		)
		return err
	})
}

// statsBadge renders the aggregates shown above the product table.
func statsBadge(st core.Stats) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state := "ready"
		if st.ErrorCount > 0 {
			state = "blocked"
		}
		_, err := fmt.Fprintf(w,
			`<div id="stats" class="stats" data-state="%s"><span class="stat-count">%d</span><span class="stat-quantity">%s</span><span class="stat-value">%s</span><span class="stat-errors">%d</span></div>`,
			state,
			st.Count,
			templ.EscapeString(core.FormatAmount(st.SumQuantity, ",")),
			templ.EscapeString(core.FormatAmount(st.SumValue, ",")),
			st.ErrorCount,
		)
		return err
	})
}

// categoryOptions renders the category <select> options, marking selected.
func categoryOptions(selected core.Category) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range core.Categories {
			attr := ""
			if c == selected {
				attr = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s - %s</option>`,
				c, attr, c, templ.EscapeString(c.Label())); err != nil {
				return err
			}
		}
		return nil
	})
}

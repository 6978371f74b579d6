package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/erazemk/shramba/internal/expiry"
	"github.com/erazemk/shramba/internal/query"
)

// shortID is how many characters of an ID are shown in listings.
const shortID = 8

type styles struct {
	header  lipgloss.Style
	cell    lipgloss.Style
	expired lipgloss.Style
	soon    lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		expired: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Padding(0, 1),
		soon:    r.NewStyle().Foreground(lipgloss.Color("#F5C542")).Padding(0, 1),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#6BCB77")).Padding(0, 1),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
	}
}

func (s styles) status(st expiry.Status) lipgloss.Style {
	switch st {
	case expiry.StatusExpired:
		return s.expired
	case expiry.StatusSoon:
		return s.soon
	case expiry.StatusOK:
		return s.ok
	default:
		return s.cell
	}
}

func short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

func statusText(v query.View) string {
	switch v.Status {
	case expiry.StatusExpired:
		return fmt.Sprintf("expired %dd ago", -v.DaysLeft)
	case expiry.StatusSoon:
		if v.DaysLeft == 0 {
			return "expires today"
		}
		return fmt.Sprintf("%dd left", v.DaysLeft)
	case expiry.StatusOK:
		return fmt.Sprintf("%dd left", v.DaysLeft)
	default:
		return "-"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderViews writes the item table followed by a status summary line.
func renderViews(w io.Writer, views []query.View) {
	s := newStyles(w)
	if len(views) == 0 {
		fmt.Fprintln(w, s.muted.Render("No items."))
		return
	}

	const statusCol = 6
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.muted).
		Headers("ID", "NAME", "QTY", "CATEGORY", "LOCATION", "EXPIRY", "STATUS")
	for _, v := range views {
		name := v.Item.Name
		if v.Item.IsOpened() {
			name += " (opened)"
		}
		t.Row(
			short(v.Item.ID),
			name,
			strconv.Itoa(v.Item.Quantity),
			v.Item.Category,
			orDash(v.Item.Location.String()),
			orDash(v.Expiry.String()),
			statusText(v),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return s.header
		}
		if i := row - (table.HeaderRow + 1); col == statusCol && i >= 0 && i < len(views) {
			return s.status(views[i].Status)
		}
		return s.cell
	})
	fmt.Fprintln(w, t.Render())

	sum := query.Summarize(views)
	fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("%d items: %d expired, %d expiring soon, %d ok, %d without expiry",
		sum.Total, sum.Expired, sum.Soon, sum.OK, sum.NoExpiry)))
}

// renderItem writes one item as a list of fields.
func renderItem(w io.Writer, v query.View) {
	s := newStyles(w)
	item := v.Item
	fmt.Fprintln(w, s.title.Render(item.Name))

	rows := [][2]string{
		{"id", item.ID},
		{"barcode", orDash(item.Barcode)},
		{"category", item.Category},
		{"quantity", strconv.Itoa(item.Quantity)},
		{"location", orDash(item.Location.String())},
		{"expiry", orDash(item.Expiry.String())},
	}
	if item.Opened != nil {
		rows = append(rows, [2]string{"opened", item.Opened.Date.String()})
		if item.Opened.ShelfLifeMonths > 0 {
			rows = append(rows, [2]string{"shelf life", fmt.Sprintf("%d months", item.Opened.ShelfLifeMonths)})
		}
	}
	rows = append(rows,
		[2]string{"effective", orDash(v.Expiry.String())},
		[2]string{"status", s.status(v.Status).UnsetPadding().Render(statusText(v))},
	)
	for _, r := range rows {
		fmt.Fprintf(w, "  %-11s %s\n", r[0], r[1])
	}
}

// Package query builds the filtered, sorted view of the inventory shown to
// the user. It holds no state of its own.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/erazemk/shramba/internal/expiry"
	"github.com/erazemk/shramba/internal/model"
)

// SortKey selects the order of the view.
type SortKey string

// Sort orders.
const (
	SortDate     SortKey = "date"
	SortLocation SortKey = "location"
	SortExpiry   SortKey = "expiry"
	SortCategory SortKey = "category"
)

// SortKeys lists every valid sort order.
var SortKeys = []SortKey{SortDate, SortLocation, SortExpiry, SortCategory}

// ParseSort validates a sort name. An empty name means SortDate.
func ParseSort(s string) (SortKey, error) {
	if s == "" {
		return SortDate, nil
	}
	k := SortKey(strings.ToLower(s))
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("%w: unknown sort %q", model.ErrValidation, s)
	}
	return k, nil
}

// Options is the filter and sort configuration for one query.
type Options struct {
	// Search matches a case-insensitive substring of name or barcode.
	Search string
	// Context narrows the view to a house, room or storage subtree.
	Context  model.Location
	Category string
	// ShowZero includes items whose quantity is 0.
	ShowZero bool
	// Expired and Soon restrict the view to those statuses; with both unset
	// the status doesn't matter.
	Expired bool
	Soon    bool
	// ThresholdDays is the "soon" window; 0 means expiry.DefaultThresholdDays.
	ThresholdDays int
	Sort          SortKey
}

// View is one row of the result.
type View struct {
	Item model.Item `json:"item"`
	// Expiry is the effective expiry; zero when the item has none.
	Expiry   model.Date    `json:"effectiveExpiry"`
	DaysLeft int           `json:"daysLeft"`
	Status   expiry.Status `json:"status"`
}

// Run filters and sorts items as of now.
func Run(items []model.Item, opts Options, now time.Time) []View {
	threshold := opts.ThresholdDays
	if threshold <= 0 {
		threshold = expiry.DefaultThresholdDays
	}
	folder := cases.Fold()
	search := folder.String(strings.TrimSpace(opts.Search))

	views := make([]View, 0, len(items))
	for _, item := range items {
		if !opts.ShowZero && item.Quantity <= 0 {
			continue
		}
		if search != "" && !matchesSearch(folder, item, search) {
			continue
		}
		if !opts.Context.IsZero() && !opts.Context.Contains(item.Location) {
			continue
		}
		if opts.Category != "" && item.Category != opts.Category {
			continue
		}

		v := View{Item: item}
		v.Expiry, _ = expiry.Effective(item)
		v.Status, v.DaysLeft = expiry.StatusOf(item, now, threshold)

		if (opts.Expired || opts.Soon) &&
			!(opts.Expired && v.Status == expiry.StatusExpired) &&
			!(opts.Soon && v.Status == expiry.StatusSoon) {
			continue
		}
		views = append(views, v)
	}

	slices.SortStableFunc(views, comparator(opts.Sort))
	return views
}

func matchesSearch(folder cases.Caser, item model.Item, folded string) bool {
	return strings.Contains(folder.String(item.Name), folded) ||
		strings.Contains(folder.String(item.Barcode), folded)
}

func comparator(key SortKey) func(a, b View) int {
	switch key {
	case SortLocation:
		return func(a, b View) int {
			return compareMissingLast(a.Item.Location.Key(), b.Item.Location.Key(), a.Item.Location.IsZero(), b.Item.Location.IsZero())
		}
	case SortExpiry:
		return func(a, b View) int {
			if a.Expiry.IsZero() || b.Expiry.IsZero() {
				return compareMissingLast(0, 0, a.Expiry.IsZero(), b.Expiry.IsZero())
			}
			return a.Expiry.Compare(b.Expiry)
		}
	case SortCategory:
		return func(a, b View) int {
			return cmp.Compare(a.Item.Category, b.Item.Category)
		}
	default:
		return func(a, b View) int {
			return b.Item.CreatedAt.Compare(a.Item.CreatedAt)
		}
	}
}

// compareMissingLast orders present values ascending and missing ones after
// every present value.
func compareMissingLast[T cmp.Ordered](a, b T, aMissing, bMissing bool) int {
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return 1
	case bMissing:
		return -1
	default:
		return cmp.Compare(a, b)
	}
}

// Summary counts the views by status.
type Summary struct {
	Total    int `json:"total"`
	Expired  int `json:"expired"`
	Soon     int `json:"soon"`
	OK       int `json:"ok"`
	NoExpiry int `json:"noExpiry"`
}

// Summarize counts views by status.
func Summarize(views []View) Summary {
	s := Summary{Total: len(views)}
	for _, v := range views {
		switch v.Status {
		case expiry.StatusExpired:
			s.Expired++
		case expiry.StatusSoon:
			s.Soon++
		case expiry.StatusOK:
			s.OK++
		default:
			s.NoExpiry++
		}
	}
	return s
}

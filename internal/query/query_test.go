package query

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/expiry"
	"github.com/erazemk/shramba/internal/model"
)

var now = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.Local)

func at(minutes int) time.Time {
	return time.Date(2024, time.May, 1, 0, minutes, 0, 0, time.UTC)
}

func names(views []View) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Item.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortByDateNewestFirst(t *testing.T) {
	items := []model.Item{
		{Name: "T1", Quantity: 1, CreatedAt: at(1)},
		{Name: "T2", Quantity: 1, CreatedAt: at(2)},
		{Name: "T3", Quantity: 1, CreatedAt: at(3)},
	}

	got := names(Run(items, Options{Sort: SortDate}, now))
	if want := []string{"T3", "T2", "T1"}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortByLocationMissingLast(t *testing.T) {
	items := []model.Item{
		{Name: "none", Quantity: 1},
		{Name: "garage", Quantity: 1, Location: model.Location{House: "Home", Room: "Garage"}},
		{Name: "cabin", Quantity: 1, Location: model.Location{House: "Cabin"}},
		{Name: "none2", Quantity: 1},
	}

	got := names(Run(items, Options{Sort: SortLocation}, now))
	if want := []string{"cabin", "garage", "none", "none2"}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortByExpiry(t *testing.T) {
	items := []model.Item{
		{Name: "none", Quantity: 1},
		{Name: "late", Quantity: 1, Expiry: model.NewDate(2024, time.December, 1)},
		{Name: "opened", Quantity: 1, Expiry: model.NewDate(2024, time.December, 1),
			Opened: &model.Opened{Date: model.NewDate(2024, time.May, 1), ShelfLifeMonths: 1}},
		{Name: "early", Quantity: 1, Expiry: model.NewDate(2024, time.July, 1)},
	}

	got := names(Run(items, Options{Sort: SortExpiry}, now))
	if want := []string{"opened", "early", "late", "none"}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortByCategoryStable(t *testing.T) {
	items := []model.Item{
		{Name: "b1", Category: "Food", Quantity: 1},
		{Name: "a1", Category: "Drinks", Quantity: 1},
		{Name: "b2", Category: "Food", Quantity: 1},
		{Name: "a2", Category: "Drinks", Quantity: 1},
	}

	got := names(Run(items, Options{Sort: SortCategory}, now))
	if want := []string{"a1", "a2", "b1", "b2"}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestContextFilter(t *testing.T) {
	items := []model.Item{
		{Name: "pantry", Quantity: 1, Location: model.Location{House: "Home", Room: "Kitchen", Storage: "Pantry"}},
		{Name: "garage", Quantity: 1, Location: model.Location{House: "Home", Room: "Garage"}},
		{Name: "house-only", Quantity: 1, Location: model.Location{House: "Home"}},
	}

	got := names(Run(items, Options{Context: model.Location{House: "Home", Room: "Kitchen"}}, now))
	if want := []string{"pantry"}; !equal(got, want) {
		t.Errorf("room context: got %v, want %v", got, want)
	}

	got = names(Run(items, Options{Context: model.Location{House: "Home"}, Sort: SortLocation}, now))
	if want := []string{"house-only", "garage", "pantry"}; !equal(got, want) {
		t.Errorf("house context: got %v, want %v", got, want)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	items := []model.Item{
		{Name: "Whole Milk", Quantity: 1},
		{Name: "Bread", Barcode: "5901234123457", Quantity: 1},
		{Name: "Über Käse", Quantity: 1},
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"milk", []string{"Whole Milk"}},
		{"MILK", []string{"Whole Milk"}},
		{"12341", []string{"Bread"}},
		{"über KÄSE", []string{"Über Käse"}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		got := names(Run(items, Options{Search: tt.search, Sort: SortCategory}, now))
		if !equal(got, tt.want) {
			t.Errorf("Search %q: got %v, want %v", tt.search, got, tt.want)
		}
	}
}

func TestZeroQuantityHidden(t *testing.T) {
	items := []model.Item{
		{Name: "empty", Quantity: 0},
		{Name: "full", Quantity: 2},
	}

	if got := names(Run(items, Options{}, now)); !equal(got, []string{"full"}) {
		t.Errorf("got %v", got)
	}
	if got := Run(items, Options{ShowZero: true}, now); len(got) != 2 {
		t.Errorf("expected zero-quantity item when shown, got %d", len(got))
	}
}

func TestCategoryAndStatusFilters(t *testing.T) {
	items := []model.Item{
		{Name: "expired", Category: "Food", Quantity: 1, Expiry: model.NewDate(2024, time.May, 30)},
		{Name: "soon", Category: "Food", Quantity: 1, Expiry: model.NewDate(2024, time.June, 10)},
		{Name: "ok", Category: "Drinks", Quantity: 1, Expiry: model.NewDate(2025, time.June, 10)},
		{Name: "none", Category: "Food", Quantity: 1},
	}

	tests := []struct {
		opts Options
		want []string
	}{
		{Options{Category: "Food", Sort: SortExpiry}, []string{"expired", "soon", "none"}},
		{Options{Expired: true}, []string{"expired"}},
		{Options{Soon: true}, []string{"soon"}},
		{Options{Expired: true, Soon: true, Sort: SortExpiry}, []string{"expired", "soon"}},
		{Options{Soon: true, ThresholdDays: 7}, nil},
		{Options{Category: "Drinks", Expired: true}, nil},
	}

	for _, tt := range tests {
		got := names(Run(items, tt.opts, now))
		if !equal(got, tt.want) {
			t.Errorf("Run(%+v) = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestViewCarriesExpiry(t *testing.T) {
	items := []model.Item{{
		Name: "Jam", Quantity: 1,
		Expiry: model.NewDate(2024, time.June, 1),
		Opened: &model.Opened{Date: model.NewDate(2024, time.May, 1), ShelfLifeMonths: 3},
	}}

	v := Run(items, Options{}, now)[0]
	if v.Expiry != model.NewDate(2024, time.June, 1) || v.DaysLeft != 0 || v.Status != expiry.StatusSoon {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestParseSort(t *testing.T) {
	if k, err := ParseSort(""); err != nil || k != SortDate {
		t.Errorf("ParseSort(\"\") = %v, %v", k, err)
	}
	if k, err := ParseSort("Expiry"); err != nil || k != SortExpiry {
		t.Errorf("ParseSort(Expiry) = %v, %v", k, err)
	}
	if _, err := ParseSort("price"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	views := []View{
		{Status: expiry.StatusExpired},
		{Status: expiry.StatusSoon},
		{Status: expiry.StatusSoon},
		{Status: expiry.StatusOK},
		{Status: expiry.StatusNone},
	}
	want := Summary{Total: 5, Expired: 1, Soon: 2, OK: 1, NoExpiry: 1}
	if got := Summarize(views); got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}

package model

import "time"

// Uncategorized is the category items fall back to when theirs is deleted.
const Uncategorized = "Uncategorized"

// DefaultCategories seed the category set of a fresh inventory.
var DefaultCategories = []string{"Food", "Drinks", "Medicine", "Household", Uncategorized}

// Opened holds the state of an opened product. A zero Date or zero
// ShelfLifeMonths means that part is unknown.
type Opened struct {
	Date            Date `json:"openedDate"`
	ShelfLifeMonths int  `json:"shelfLifeMonths,omitempty"`
}

// Item represents one inventory row (quantity-based).
type Item struct {
	ID        string    `json:"id"`
	Barcode   string    `json:"barcode,omitempty"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	Opened    *Opened   `json:"opened,omitempty"`
	Expiry    Date      `json:"expiry"`
	Location  Location  `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOpened reports whether the product has been opened.
func (i Item) IsOpened() bool {
	return i.Opened != nil
}

// Clone returns a copy of i that shares no memory with it.
func (i Item) Clone() Item {
	if i.Opened != nil {
		o := *i.Opened
		i.Opened = &o
	}
	return i
}

package models

// Category classifies an expense for summaries and display.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryAccommodation Category = "Accommodation"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryOther         Category = "Other"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryAccommodation,
		CategoryEntertainment,
		CategoryShopping,
		CategoryBills,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryAccommodation,
		CategoryEntertainment, CategoryShopping, CategoryBills, CategoryOther:
		return true
	}
	return false
}

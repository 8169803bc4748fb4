package model

// AllCategories is the filter value meaning "do not filter by category".
const AllCategories = "All"

// DefaultCategory is used when an imported row has no category.
const DefaultCategory = "Other"

// DefaultCategories are seeded into an empty category table.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Utilities",
	"Rent",
	"Entertainment",
	"Health",
	"Education",
	"Shopping",
	"Other",
}

// IsAllCategories reports whether a category filter selects every category.
func IsAllCategories(category string) bool {
	return category == "" || category == AllCategories
}

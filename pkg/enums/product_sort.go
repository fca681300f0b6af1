package enums

// ProductSort names the supported catalog orderings.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortOldest    ProductSort = "oldest"
	ProductSortHighToLow ProductSort = "highToLow"
	ProductSortLowToHigh ProductSort = "lowToHigh"
)

func (s ProductSort) IsValid() bool {
	switch s {
	case ProductSortNewest, ProductSortOldest, ProductSortHighToLow, ProductSortLowToHigh:
		return true
	}
	return false
}

// OrderClause returns the SQL ordering for the sort, defaulting to newest.
func (s ProductSort) OrderClause() string {
	switch s {
	case ProductSortOldest:
		return "created_at ASC"
	case ProductSortHighToLow:
		return "price DESC"
	case ProductSortLowToHigh:
		return "price ASC"
	default:
		return "created_at DESC"
	}
}

package domain

// Category is a catalog grouping with the number of products filed under it.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}

package db

// Product is one row of the products table.
type Product struct {
	ID    int64
	Name  string
	Price float64
}

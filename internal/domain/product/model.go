package product

// Product is a named category that keys are issued against. The admin-chosen
// name doubles as the identifier.
type Product struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

package entity

// Category agrupa productos. Description es opcional.
type Category struct {
	ID          string
	Name        string
	Description string
}

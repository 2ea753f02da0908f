package entity

import "time"

// Supplier es un proveedor al que se le registran compras.
type Supplier struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	Company   string
	CreatedAt time.Time
}

// Customer es un cliente al que se le registran ventas.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
}

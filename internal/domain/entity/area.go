package entity

// Area unidad administrativa resuelta por el directorio externo.
type Area struct {
	ID   int64
	Name string
}

package entity

// Actor identifica a quien ejecuta una operación. Solo se usa para auditoría.
type Actor struct {
	ID   string
	Name string
}

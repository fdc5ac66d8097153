package inventory

// Límites de paginación.
const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage acota la página para que el offset no desborde int.
	MaxPage = 1_000_000
)

// Page metadatos de paginación por página (1..n).
type Page struct {
	Number  int
	Limit   int
	Total   int64
	Pages   int
	HasNext bool
	HasPrev bool
}

// NewPage normaliza página y límite: página entre 1 y MaxPage, límite por defecto 20 y máximo 100.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPage {
		number = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset filas a saltar.
func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

// WithTotal completa total, páginas y navegación.
func (p Page) WithTotal(total int64) Page {
	p.Total = total
	p.Pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	p.HasNext = p.Number < p.Pages
	p.HasPrev = p.Number > 1
	return p
}

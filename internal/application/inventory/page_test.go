package inventory_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
)

func TestNewPage_Normaliza(t *testing.T) {
	cases := []struct {
		name          string
		number, limit int
		wantNumber    int
		wantLimit     int
	}{
		{"valores por defecto", 0, 0, 1, inventory.DefaultLimit},
		{"negativos", -3, -1, 1, inventory.DefaultLimit},
		{"límite máximo", 2, 500, 2, inventory.MaxLimit},
		{"página enorme", math.MaxInt, inventory.MaxLimit, inventory.MaxPage, inventory.MaxLimit},
		{"página del reporte", 922337203685477581, 100, inventory.MaxPage, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := inventory.NewPage(tc.number, tc.limit)
			assert.Equal(t, tc.wantNumber, p.Number)
			assert.Equal(t, tc.wantLimit, p.Limit)
			assert.GreaterOrEqual(t, p.Offset(), 0, "el offset nunca desborda")
		})
	}
}

func TestKardexQuery_PaginaEnormeDevuelveVacio(t *testing.T) {
	f := newFixture(t)
	seedMovements(t, f)

	page, err := f.queries.List(context.Background(), inventory.KardexQuery{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(5), page.Page.Total)
	assert.False(t, page.Page.HasNext)

	ing, err := f.ingresos.List(context.Background(), nil, "", math.MaxInt, 100)
	require.NoError(t, err)
	assert.Empty(t, ing.Items)
}

package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Los valores del mapa nunca se mutan en sitio: cada escritura guarda una copia nueva,
// así las instantáneas compartidas por clone() no ven cambios ajenos.

var (
	_ repository.StockRepository    = (*stockRepo)(nil)
	_ repository.KardexRepository   = (*kardexRepo)(nil)
	_ repository.IngresoRepository  = (*ingresoRepo)(nil)
	_ repository.SequenceRepository = (*sequenceRepo)(nil)
	_ repository.ProductRepository  = (*productRepo)(nil)
)

type productRepo struct{ st *state }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type sequenceRepo struct{ st *state }

func (r *sequenceRepo) Next(_ context.Context, module string) (int64, error) {
	r.st.sequences[module]++
	return r.st.sequences[module], nil
}

type stockRepo struct{ st *state }

func (r *stockRepo) Get(_ context.Context, productID string) (*entity.StockRecord, error) {
	rec, ok := r.st.stock[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *stockRepo) CreateIfMissing(_ context.Context, rec *entity.StockRecord) error {
	if _, ok := r.st.stock[rec.ProductID]; ok {
		return nil
	}
	c := rec.Clone()
	c.Version = 0
	r.st.stock[rec.ProductID] = c
	return nil
}

func (r *stockRepo) CompareAndSwap(_ context.Context, rec *entity.StockRecord, expectedVersion int64) error {
	cur, ok := r.st.stock[rec.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrentUpdate
	}
	c := rec.Clone()
	c.Version = expectedVersion + 1
	c.CreatedAt = cur.CreatedAt
	r.st.stock[rec.ProductID] = c
	return nil
}

func (r *stockRepo) List(_ context.Context, f repository.StockFilter) ([]repository.StockView, int64, error) {
	var matched []repository.StockView
	for id, rec := range r.st.stock {
		p, ok := r.st.products[id]
		if !ok || !p.Active || !rec.Active {
			continue
		}
		if f.Low && rec.QuantityTotal.GreaterThan(p.StockMinimo) {
			continue
		}
		if f.Critical && rec.QuantityTotal.GreaterThan(p.StockCritico) {
			continue
		}
		cp := *p
		matched = append(matched, repository.StockView{Record: rec.Clone(), Product: &cp})
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Product, matched[j].Product
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return paginate(matched, f.Offset, f.Limit), int64(len(matched)), nil
}

func (r *stockRepo) ListAlerts(_ context.Context) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range r.st.stock {
		if rec.Active && rec.Alert {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *stockRepo) ListProductIDs(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(r.st.stock))
	for id := range r.st.stock {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type kardexRepo struct{ st *state }

func (r *kardexRepo) Append(_ context.Context, e *entity.KardexEntry) error {
	if _, ok := r.st.byTx[e.TransactionID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.st.byNumber[e.MovementNumber]; ok {
		return domain.ErrDuplicate
	}
	c := *e
	r.st.kardex = append(r.st.kardex, &c)
	r.st.byTx[c.TransactionID] = &c
	r.st.byNumber[c.MovementNumber] = &c
	return nil
}

func (r *kardexRepo) GetByTransactionID(_ context.Context, transactionID string) (*entity.KardexEntry, error) {
	e, ok := r.st.byTx[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r *kardexRepo) GetByMovementNumber(_ context.Context, number string) (*entity.KardexEntry, error) {
	e, ok := r.st.byNumber[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r *kardexRepo) List(_ context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, int64, error) {
	var matched []*entity.KardexEntry
	for _, e := range r.st.kardex {
		if matchKardex(e, f) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].MovedAt.Equal(matched[j].MovedAt) {
			return matched[i].MovedAt.After(matched[j].MovedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := int64(len(matched))
	return copyEntries(paginate(matched, f.Offset, f.Limit)), total, nil
}

func matchKardex(e *entity.KardexEntry, f repository.KardexFilter) bool {
	switch {
	case f.ProductID != "" && e.ProductID != f.ProductID:
		return false
	case f.OperationKind != "" && e.OperationKind != f.OperationKind:
		return false
	case f.MovementKind != "" && e.MovementKind != f.MovementKind:
		return false
	case f.IngresoID != nil && (e.IngresoID == nil || *e.IngresoID != *f.IngresoID):
		return false
	case f.RequestID != "" && e.RequestID != f.RequestID:
		return false
	case f.WorkOrderNumber != "" && e.WorkOrderNumber != f.WorkOrderNumber:
		return false
	case f.From != nil && e.MovedAt.Before(*f.From):
		return false
	case f.To != nil && e.MovedAt.After(*f.To):
		return false
	}
	return true
}

func (r *kardexRepo) ListChain(_ context.Context, productID string) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for _, e := range r.st.kardex {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return copyEntries(out), nil
}

func (r *kardexRepo) Totals(_ context.Context, productID string) ([]repository.KardexTotals, error) {
	acc := map[string]*repository.KardexTotals{}
	for _, e := range r.st.kardex {
		if productID != "" && e.ProductID != productID {
			continue
		}
		t, ok := acc[e.ProductID]
		if !ok {
			t = &repository.KardexTotals{ProductID: e.ProductID, ByKind: map[entity.OperationKind]decimal.Decimal{}}
			acc[e.ProductID] = t
		}
		t.ByKind[e.OperationKind] = t.ByKind[e.OperationKind].Add(e.QuantityDelta)
		t.Movements++
	}
	out := make([]repository.KardexTotals, 0, len(acc))
	for _, t := range acc {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type ingresoRepo struct{ st *state }

func (r *ingresoRepo) Create(_ context.Context, in *entity.Ingreso) error {
	if _, ok := r.st.ingresos[in.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.ingresos {
		if other.ReceiptNumber == in.ReceiptNumber {
			return domain.ErrDuplicate
		}
	}
	r.st.ingresos[in.ID] = in.Clone()
	return nil
}

func (r *ingresoRepo) GetByID(_ context.Context, id int64) (*entity.Ingreso, error) {
	in, ok := r.st.ingresos[id]
	if !ok || !in.Active {
		return nil, domain.ErrNotFound
	}
	return in.Clone(), nil
}

func (r *ingresoRepo) Save(_ context.Context, in *entity.Ingreso, from entity.Condition, prevUpdatedAt time.Time) error {
	cur, ok := r.st.ingresos[in.ID]
	if !ok || !cur.Active {
		return domain.ErrNotFound
	}
	if cur.Condition != from {
		return domain.ErrInvalidState
	}
	if !cur.UpdatedAt.Equal(prevUpdatedAt) {
		return domain.ErrConcurrentUpdate
	}
	r.st.ingresos[in.ID] = in.Clone()
	return nil
}

func (r *ingresoRepo) List(_ context.Context, f repository.IngresoFilter) ([]*entity.Ingreso, int64, error) {
	var matched []*entity.Ingreso
	for _, in := range r.st.ingresos {
		if !in.Active {
			continue
		}
		if f.Condition != nil && in.Condition != *f.Condition {
			continue
		}
		if f.ProductID != "" && in.ProductID != f.ProductID {
			continue
		}
		if !r.matchSearch(in, f) {
			continue
		}
		matched = append(matched, in)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if f.OldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if f.OldestFirst {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	total := int64(len(matched))
	page := paginate(matched, f.Offset, f.Limit)
	out := make([]*entity.Ingreso, len(page))
	for i, in := range page {
		out[i] = in.Clone()
	}
	return out, total, nil
}

func (r *ingresoRepo) matchSearch(in *entity.Ingreso, f repository.IngresoFilter) bool {
	if !containsFold(in.ReceiptNumber, f.ReceiptNumber) ||
		!containsFold(in.Supplier, f.Supplier) ||
		!containsFold(in.Invoice, f.Invoice) {
		return false
	}
	if f.ProductCode != "" {
		p, ok := r.st.products[in.ProductID]
		if !ok || !containsFold(p.Code, f.ProductCode) {
			return false
		}
	}
	if f.From != nil && in.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && in.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func copyEntries(in []*entity.KardexEntry) []*entity.KardexEntry {
	out := make([]*entity.KardexEntry, len(in))
	for i, e := range in {
		c := *e
		out[i] = &c
	}
	return out
}

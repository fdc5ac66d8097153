package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// CreateIngresoInput datos para registrar un ingreso de mercancía.
type CreateIngresoInput struct {
	ProductID         string
	Supplier          string
	PurchaseOrder     string
	Invoice           string
	QuantityRequested decimal.Decimal
	UnitCost          decimal.Decimal
	Batch             string
	ExpiryDate        *time.Time
	Location          string
	Document          string
	Notes             string
}

// ValidateIngresoInput datos de la validación (recepción física).
type ValidateIngresoInput struct {
	QuantityReceived decimal.Decimal
	Notes            string
	Location         string
	OperationKey     string
}

// UpdateIngresoInput actualización parcial; nil = sin cambio.
type UpdateIngresoInput struct {
	Supplier          *string
	PurchaseOrder     *string
	Invoice           *string
	QuantityRequested *decimal.Decimal
	UnitCost          *decimal.Decimal
	Batch             *string
	ExpiryDate        *time.Time
	Location          *string
	Document          *string
	Notes             *string
}

// ValidateIngresoResult ingreso validado junto al movimiento y stock resultantes.
type ValidateIngresoResult struct {
	Ingreso  *entity.Ingreso
	Movement *MovementResult
}

// IngresoUseCase máquina de estados de los ingresos: Creado -> Validado | Cantidad modificada, Creado -> Cancelado.
type IngresoUseCase struct {
	exec *executor
}

// NewIngresoUseCase construye el caso de uso.
func NewIngresoUseCase(txRunner TxRunner, log *logger.Logger, opts Options) *IngresoUseCase {
	return &IngresoUseCase{exec: newExecutor(txRunner, log, opts, "ingresos")}
}

// Create registra el ingreso en estado Creado. No afecta el stock.
func (uc *IngresoUseCase) Create(ctx context.Context, in CreateIngresoInput, actor entity.Actor) (*entity.Ingreso, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := uc.exec.now()
	if err := validateCreate(&in, now); err != nil {
		return nil, err
	}

	var created *entity.Ingreso
	err := uc.exec.write(ctx, "create_ingreso", func(ctx context.Context, r Repos) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !product.Active {
			return fmt.Errorf("producto %s inactivo: %w", product.ID, domain.ErrNotFound)
		}
		seq, err := r.Sequences.Next(ctx, inventory.SequenceIngreso)
		if err != nil {
			return err
		}
		location := in.Location
		if location == "" {
			location = product.Location
		}
		ing := &entity.Ingreso{
			ID:                seq,
			ReceiptNumber:     inventory.ReceiptNumber(now, seq),
			ProductID:         product.ID,
			Supplier:          in.Supplier,
			PurchaseOrder:     in.PurchaseOrder,
			Invoice:           in.Invoice,
			QuantityRequested: in.QuantityRequested,
			QuantityReceived:  decimal.Zero,
			UnitCost:          in.UnitCost,
			TotalCost:         in.QuantityRequested.Mul(in.UnitCost),
			Batch:             in.Batch,
			ExpiryDate:        in.ExpiryDate,
			Location:          location,
			Document:          in.Document,
			Notes:             in.Notes,
			Condition:         entity.ConditionCreated,
			Active:            true,
			CreatedAt:         now,
			CreatedBy:         actor.ID,
			CreatedByName:     actor.Name,
			UpdatedAt:         now,
			UpdatedBy:         actor.ID,
			UpdatedByName:     actor.Name,
		}
		if err := r.Ingresos.Create(ctx, ing); err != nil {
			return err
		}
		created = ing
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.exec.log.Info().Str("ingreso", created.ReceiptNumber).Str("producto", created.ProductID).Msg("ingreso creado")
	return created, nil
}

func validateCreate(in *CreateIngresoInput, now time.Time) error {
	in.Supplier = cleanText(in.Supplier)
	in.Notes = cleanText(in.Notes)
	in.Batch = cleanText(in.Batch)
	in.Location = cleanText(in.Location)
	in.PurchaseOrder = cleanText(in.PurchaseOrder)
	in.Invoice = cleanText(in.Invoice)
	in.Document = cleanText(in.Document)
	if in.ProductID == "" {
		return domain.NewValidationError("product_id", "requerido")
	}
	if err := validateSupplier(in.Supplier); err != nil {
		return err
	}
	if !in.QuantityRequested.IsPositive() {
		return domain.NewValidationError("quantity_requested", "la cantidad debe ser mayor a cero")
	}
	if err := checkQuantity("quantity_requested", in.QuantityRequested); err != nil {
		return err
	}
	if in.UnitCost.IsNegative() {
		return domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
	}
	if err := checkCost("unit_cost", in.UnitCost); err != nil {
		return err
	}
	if err := checkValue("total_cost", in.QuantityRequested.Mul(in.UnitCost)); err != nil {
		return err
	}
	if in.ExpiryDate != nil && inventory.DaysUntil(*in.ExpiryDate, now) <= 0 {
		return domain.NewValidationError("expiry_date", "la fecha de vencimiento debe ser futura")
	}
	return nil
}

func validateSupplier(s string) error {
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 200 {
		return domain.NewValidationError("supplier", "debe tener entre 3 y 200 caracteres")
	}
	return nil
}

// Validate registra la recepción: transición condicional desde Creado, entrada al stock y
// movimiento INGRESO/COMPRA en una sola transacción. Dos validaciones concurrentes: solo una gana,
// la otra recibe ErrInvalidState.
func (uc *IngresoUseCase) Validate(ctx context.Context, id int64, in ValidateIngresoInput, actor entity.Actor) (*ValidateIngresoResult, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !in.QuantityReceived.IsPositive() {
		return nil, domain.NewValidationError("quantity_received", "la cantidad recibida debe ser mayor a cero")
	}
	if err := checkQuantity("quantity_received", in.QuantityReceived); err != nil {
		return nil, err
	}
	in.Notes = cleanText(in.Notes)
	in.Location = cleanText(in.Location)
	if in.OperationKey == "" {
		in.OperationKey = uuid.New().String()
	}

	var res *ValidateIngresoResult
	err := uc.exec.write(ctx, "validate_ingreso", func(ctx context.Context, r Repos) error {
		var err error
		res, err = uc.validateTx(ctx, r, id, in, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.exec.log.Info().
		Str("ingreso", res.Ingreso.ReceiptNumber).
		Str("condicion", res.Ingreso.Condition.String()).
		Str("movimiento", res.Movement.Entry.MovementNumber).
		Msg("ingreso validado")
	return res, nil
}

func (uc *IngresoUseCase) validateTx(ctx context.Context, r Repos, id int64, in ValidateIngresoInput, actor entity.Actor) (*ValidateIngresoResult, error) {
	// reintento de una validación que ya confirmó
	if prev, err := r.Kardex.GetByTransactionID(ctx, in.OperationKey); err == nil {
		if prev.IngresoID == nil || *prev.IngresoID != id {
			return nil, domain.NewValidationError("operation_key", "la llave ya se usó para otro movimiento")
		}
		ing, err := r.Ingresos.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		rec, err := r.Stock.Get(ctx, prev.ProductID)
		if err != nil {
			return nil, err
		}
		return &ValidateIngresoResult{Ingreso: ing, Movement: &MovementResult{Entry: prev, Stock: rec, Replayed: true}}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	ing, err := r.Ingresos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing.Condition != entity.ConditionCreated {
		return nil, fmt.Errorf("ingreso %s en estado %s: %w", ing.ReceiptNumber, ing.Condition, domain.ErrInvalidState)
	}
	if in.QuantityReceived.GreaterThan(ing.QuantityRequested) {
		return nil, domain.NewValidationError("quantity_received", "la cantidad recibida supera la solicitada")
	}

	now := uc.exec.now()
	prevUpdatedAt := ing.UpdatedAt
	next := ing.Clone()
	next.QuantityReceived = in.QuantityReceived
	if in.QuantityReceived.Equal(ing.QuantityRequested) {
		next.Condition = entity.ConditionValidated
	} else {
		next.Condition = entity.ConditionQuantityModified
	}
	next.TotalCost = in.QuantityReceived.Mul(ing.UnitCost)
	next.ReceivedAt = &now
	next.ValidatedBy = actor.ID
	next.ValidatedByName = actor.Name
	next.UpdatedAt = now
	next.UpdatedBy = actor.ID
	next.UpdatedByName = actor.Name
	if in.Notes != "" {
		next.Notes = in.Notes
	}
	if in.Location != "" {
		next.Location = in.Location
	}
	if err := r.Ingresos.Save(ctx, next, entity.ConditionCreated, prevUpdatedAt); err != nil {
		return nil, err
	}

	unitCost := next.UnitCost
	ingresoID := next.ID
	mv, err := uc.exec.record(ctx, r, MovementInput{
		ProductID:         next.ProductID,
		OperationKind:     entity.OperationIngreso,
		MovementKind:      entity.MovementCompra,
		Quantity:          next.QuantityReceived,
		UnitCost:          &unitCost,
		Reason:            cleanText("Ingreso validado - " + next.Supplier),
		ReferenceDocument: next.ReceiptNumber,
		DocumentNumber:    next.Invoice,
		IngresoID:         &ingresoID,
		Batch:             next.Batch,
		ExpiryDate:        next.ExpiryDate,
		Location:          next.Location,
		Actor:             actor,
		OperationKey:      in.OperationKey,
	})
	if err != nil {
		return nil, err
	}
	return &ValidateIngresoResult{Ingreso: next, Movement: mv}, nil
}

// Cancel anula un ingreso en estado Creado y agrega el motivo a las observaciones.
// Repetir la anulación con el mismo motivo devuelve el ingreso ya anulado.
func (uc *IngresoUseCase) Cancel(ctx context.Context, id int64, reason string, actor entity.Actor) (*entity.Ingreso, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	reason = cleanText(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "el motivo de anulación es obligatorio")
	}
	var out *entity.Ingreso
	err := uc.exec.write(ctx, "cancel_ingreso", func(ctx context.Context, r Repos) error {
		ing, err := r.Ingresos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// reintento de una anulación ya confirmada con el mismo motivo
		if ing.Condition == entity.ConditionCancelled && strings.HasSuffix(ing.Notes, cancelNote(reason)) {
			out = ing
			return nil
		}
		if ing.Condition != entity.ConditionCreated {
			return fmt.Errorf("ingreso %s en estado %s: %w", ing.ReceiptNumber, ing.Condition, domain.ErrInvalidState)
		}
		now := uc.exec.now()
		next := ing.Clone()
		next.Condition = entity.ConditionCancelled
		if next.Notes == "" {
			next.Notes = cancelNote(reason)
		} else {
			next.Notes += " | " + cancelNote(reason)
		}
		next.UpdatedAt = now
		next.UpdatedBy = actor.ID
		next.UpdatedByName = actor.Name
		if err := r.Ingresos.Save(ctx, next, entity.ConditionCreated, ing.UpdatedAt); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.exec.log.Info().Str("ingreso", out.ReceiptNumber).Msg("ingreso cancelado")
	return out, nil
}

func cancelNote(reason string) string { return "CANCELADO: " + reason }

// Update modifica campos de un ingreso. En Creado se puede cambiar todo; en Cantidad modificada
// solo los campos documentales, porque el stock ya se aplicó. Validado y Cancelado son de solo lectura.
// No cambia la condición.
func (uc *IngresoUseCase) Update(ctx context.Context, id int64, in UpdateIngresoInput, actor entity.Actor) (*entity.Ingreso, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	var out *entity.Ingreso
	err := uc.exec.write(ctx, "update_ingreso", func(ctx context.Context, r Repos) error {
		ing, err := r.Ingresos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyUpdate(ing, in, uc.exec.now())
		if err != nil {
			return err
		}
		next.UpdatedBy = actor.ID
		next.UpdatedByName = actor.Name
		if err := r.Ingresos.Save(ctx, next, ing.Condition, ing.UpdatedAt); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyUpdate(ing *entity.Ingreso, in UpdateIngresoInput, now time.Time) (*entity.Ingreso, error) {
	switch ing.Condition {
	case entity.ConditionCreated, entity.ConditionQuantityModified:
	default:
		return nil, fmt.Errorf("ingreso %s en estado %s: %w", ing.ReceiptNumber, ing.Condition, domain.ErrInvalidState)
	}
	stockFields := in.QuantityRequested != nil || in.UnitCost != nil || in.Batch != nil ||
		in.ExpiryDate != nil || in.Location != nil
	if ing.Condition.StockApplied() && stockFields {
		return nil, fmt.Errorf("ingreso %s ya afectó el stock, solo admite campos documentales: %w",
			ing.ReceiptNumber, domain.ErrInvalidState)
	}

	next := ing.Clone()
	if in.Supplier != nil {
		s := cleanText(*in.Supplier)
		if err := validateSupplier(s); err != nil {
			return nil, err
		}
		next.Supplier = s
	}
	if in.PurchaseOrder != nil {
		next.PurchaseOrder = cleanText(*in.PurchaseOrder)
	}
	if in.Invoice != nil {
		next.Invoice = cleanText(*in.Invoice)
	}
	if in.Document != nil {
		next.Document = cleanText(*in.Document)
	}
	if in.Notes != nil {
		next.Notes = cleanText(*in.Notes)
	}
	if in.QuantityRequested != nil {
		if !in.QuantityRequested.IsPositive() {
			return nil, domain.NewValidationError("quantity_requested", "la cantidad debe ser mayor a cero")
		}
		if err := checkQuantity("quantity_requested", *in.QuantityRequested); err != nil {
			return nil, err
		}
		next.QuantityRequested = *in.QuantityRequested
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return nil, domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
		}
		if err := checkCost("unit_cost", *in.UnitCost); err != nil {
			return nil, err
		}
		next.UnitCost = *in.UnitCost
	}
	if in.Batch != nil {
		next.Batch = cleanText(*in.Batch)
	}
	if in.ExpiryDate != nil {
		if inventory.DaysUntil(*in.ExpiryDate, now) <= 0 {
			return nil, domain.NewValidationError("expiry_date", "la fecha de vencimiento debe ser futura")
		}
		t := *in.ExpiryDate
		next.ExpiryDate = &t
	}
	if in.Location != nil {
		next.Location = cleanText(*in.Location)
	}
	if in.QuantityRequested != nil || in.UnitCost != nil {
		next.TotalCost = next.QuantityRequested.Mul(next.UnitCost)
		if err := checkValue("total_cost", next.TotalCost); err != nil {
			return nil, err
		}
	}
	next.UpdatedAt = now
	return next, nil
}

// Get devuelve un ingreso por id.
func (uc *IngresoUseCase) Get(ctx context.Context, id int64) (*entity.Ingreso, error) {
	var out *entity.Ingreso
	err := uc.exec.read(ctx, "get_ingreso", func(ctx context.Context, r Repos) error {
		var err error
		out, err = r.Ingresos.GetByID(ctx, id)
		return err
	})
	return out, err
}

// IngresoPage página de ingresos.
type IngresoPage struct {
	Items []*entity.Ingreso
	Page  Page
}

// List lista ingresos por condición y producto, más recientes primero.
func (uc *IngresoUseCase) List(ctx context.Context, condition *entity.Condition, productID string, page, limit int) (*IngresoPage, error) {
	if condition != nil && !condition.Valid() {
		return nil, domain.NewValidationError("condition", "condición inválida")
	}
	return uc.list(ctx, repository.IngresoFilter{Condition: condition, ProductID: productID}, page, limit)
}

// Pending lista los ingresos en estado Creado, los más antiguos primero.
func (uc *IngresoUseCase) Pending(ctx context.Context, page, limit int) (*IngresoPage, error) {
	c := entity.ConditionCreated
	return uc.list(ctx, repository.IngresoFilter{Condition: &c, OldestFirst: true}, page, limit)
}

// SearchDefaultLimit tamaño de página de la búsqueda cuando no se indica.
const SearchDefaultLimit = 50

// IngresoSearch criterios de búsqueda de ingresos. Los textos comparan por subcadena sin
// distinguir mayúsculas; To incluye todo el día.
type IngresoSearch struct {
	ReceiptNumber string
	ProductCode   string
	Supplier      string
	Invoice       string
	Condition     *entity.Condition
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// Search busca ingresos activos por número, código de producto, proveedor, factura,
// condición y rango de fechas de creación, más recientes primero.
func (uc *IngresoUseCase) Search(ctx context.Context, q IngresoSearch) (*IngresoPage, error) {
	if q.Condition != nil && !q.Condition.Valid() {
		return nil, domain.NewValidationError("condition", "condición inválida")
	}
	f := repository.IngresoFilter{
		Condition:     q.Condition,
		ReceiptNumber: cleanText(q.ReceiptNumber),
		ProductCode:   cleanText(q.ProductCode),
		Supplier:      cleanText(q.Supplier),
		Invoice:       cleanText(q.Invoice),
		From:          q.From,
	}
	if q.To != nil {
		end := endOfDay(*q.To)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, domain.NewValidationError("from", "la fecha inicial es posterior a la final")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = SearchDefaultLimit
	}
	return uc.list(ctx, f, q.Page, limit)
}

func (uc *IngresoUseCase) list(ctx context.Context, f repository.IngresoFilter, page, limit int) (*IngresoPage, error) {
	p := NewPage(page, limit)
	f.Limit, f.Offset = p.Limit, p.Offset()
	var out IngresoPage
	err := uc.exec.read(ctx, "list_ingresos", func(ctx context.Context, r Repos) error {
		items, total, err := r.Ingresos.List(ctx, f)
		if err != nil {
			return err
		}
		out.Items = items
		out.Page = p.WithTotal(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

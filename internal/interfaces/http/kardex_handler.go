package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// KardexHandler consultas del kardex y registro directo de movimientos.
type KardexHandler struct {
	queries *inventory.KardexQueryUseCase
	ledger  *inventory.LedgerUseCase
	log     *logger.Logger
}

// NewKardexHandler construye el handler.
func NewKardexHandler(queries *inventory.KardexQueryUseCase, ledger *inventory.LedgerUseCase, log *logger.Logger) *KardexHandler {
	return &KardexHandler{queries: queries, ledger: ledger, log: log}
}

// List godoc
// @Summary      Listar movimientos del kardex
// @Description  Filtros opcionales por producto, tipo, documento y rango de fechas (to incluye el día completo).
// @Tags         Kardex
// @Produce      json
// @Param        product_id         query  string  false  "Producto"
// @Param        operation_kind     query  string  false  "INGRESO, SALIDA, DEVOLUCION, AJUSTE_POSITIVO, AJUSTE_NEGATIVO, TRANSFERENCIA"
// @Param        movement_kind      query  string  false  "COMPRA, DESPACHO, DEVOLUCION, AJUSTE, TRANSFERENCIA"
// @Param        ingreso_id         query  int     false  "Ingreso de origen"
// @Param        request_id         query  string  false  "Solicitud"
// @Param        work_order_number  query  string  false  "Orden de trabajo"
// @Param        from               query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to                 query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        page               query  int     false  "Página"
// @Param        limit              query  int     false  "Tamaño de página (máx 100)"
// @Success      200  {object}  dto.KardexListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/kardex [get]
func (h *KardexHandler) List(c *fiber.Ctx) error {
	var params dto.KardexQueryParams
	if ok, err := parseQuery(c, &params); !ok {
		return err
	}
	q := inventory.KardexQuery{
		ProductID:       params.ProductID,
		OperationKind:   params.OperationKind,
		MovementKind:    params.MovementKind,
		RequestID:       params.RequestID,
		WorkOrderNumber: params.WorkOrderNumber,
		Page:            params.Page,
		Limit:           params.Limit,
	}
	if params.IngresoID > 0 {
		id := params.IngresoID
		q.IngresoID = &id
	}
	var err error
	if q.From, err = parseDate(params.From, "from"); err != nil {
		return writeError(c, h.log, err)
	}
	if q.To, err = parseDate(params.To, "to"); err != nil {
		return writeError(c, h.log, err)
	}
	page, err := h.queries.List(c.Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.KardexListResponse{Items: dto.ToKardexEntryDTOs(page.Items), Pagination: dto.ToPaginationDTO(page.Page)})
}

func parseDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, domain.NewValidationError(field, "formato esperado YYYY-MM-DD")
	}
	return &t, nil
}

// Trace godoc
// @Summary      Trazabilidad de un movimiento
// @Tags         Kardex
// @Produce      json
// @Param        movement_number  path  string  true  "Número de movimiento (KDX-YYYYMMDD-NNNNNN)"
// @Success      200  {object}  dto.TraceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/kardex/movements/{movement_number} [get]
func (h *KardexHandler) Trace(c *fiber.Ctx) error {
	tr, err := h.queries.Trace(c.Context(), c.Params("movement_number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TraceResponse{Movement: dto.ToKardexEntryDTO(tr.Entry), Related: dto.ToKardexEntryDTOs(tr.Related)})
}

// ByProduct godoc
// @Summary      Últimos movimientos de un producto
// @Tags         Kardex
// @Produce      json
// @Param        item_id  path   string  true   "Producto"
// @Param        limit    query  int     false  "Cantidad (por defecto 20)"
// @Success      200  {array}   dto.KardexEntryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/kardex/items/{item_id} [get]
func (h *KardexHandler) ByProduct(c *fiber.Ctx) error {
	items, err := h.queries.ByProduct(c.Context(), c.Params("item_id"), c.QueryInt("limit", inventory.DefaultLimit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToKardexEntryDTOs(items))
}

// Record godoc
// @Summary      Registrar movimiento
// @Description  Aplica el movimiento al stock y lo asienta en el kardex. Con Idempotency-Key un reintento devuelve el movimiento original (200).
// @Tags         Kardex
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Llave de operación"
// @Param        body             body    dto.RecordMovementRequest  true   "Movimiento"
// @Success      201  {object}  dto.MovementResponse
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/kardex/movements [post]
func (h *KardexHandler) Record(c *fiber.Ctx) error {
	var req dto.RecordMovementRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	res, err := h.ledger.RecordMovement(c.Context(), inventory.MovementInput{
		ProductID:         req.ProductID,
		OperationKind:     entity.OperationKind(req.OperationKind),
		MovementKind:      entity.MovementKind(req.MovementKind),
		Quantity:          req.Quantity,
		UnitCost:          req.UnitCost,
		Reason:            req.Reason,
		ReferenceDocument: req.ReferenceDocument,
		DocumentNumber:    req.DocumentNumber,
		RequestID:         req.RequestID,
		WorkOrderNumber:   req.WorkOrderNumber,
		Batch:             req.Batch,
		ExpiryDate:        req.ExpiryDate,
		Location:          req.Location,
		Actor:             GetActor(c),
		AuthorizedBy:      toActor(req.AuthorizedBy),
		OperationKey:      c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(movementStatus(res)).JSON(dto.ToMovementResponse(res))
}

func movementStatus(res *inventory.MovementResult) int {
	if res.Replayed {
		return fiber.StatusOK
	}
	return fiber.StatusCreated
}

func toActor(a *dto.ActorDTO) *entity.Actor {
	if a == nil || a.ID == "" {
		return nil
	}
	return &entity.Actor{ID: a.ID, Name: a.Name}
}

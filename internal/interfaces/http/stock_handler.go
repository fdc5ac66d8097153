package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// StockHandler consulta de stock, alertas y ajustes.
type StockHandler struct {
	queries *inventory.KardexQueryUseCase
	alerts  *inventory.AlertUseCase
	ledger  *inventory.LedgerUseCase
	log     *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *inventory.KardexQueryUseCase, alerts *inventory.AlertUseCase, ledger *inventory.LedgerUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{queries: queries, alerts: alerts, ledger: ledger, log: log}
}

// List godoc
// @Summary      Listado de stock
// @Description  Stock de los productos activos ordenado por nombre. stock_bajo deja los que están en o bajo el mínimo; stock_critico los que están en o bajo el crítico.
// @Tags         Stock
// @Produce      json
// @Param        stock_bajo     query  bool  false  "Solo en o bajo el mínimo"
// @Param        stock_critico  query  bool  false  "Solo en o bajo el crítico"
// @Param        page           query  int   false  "Página"
// @Param        limit          query  int   false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.StockListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var params dto.StockQueryParams
	if ok, err := parseQuery(c, &params); !ok {
		return err
	}
	page, err := h.queries.ListStock(c.Context(), inventory.StockQuery{
		Low:      params.Low,
		Critical: params.Critical,
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToStockListResponse(page))
}

// Get godoc
// @Summary      Stock de un producto
// @Tags         Stock
// @Produce      json
// @Param        item_id  path  string  true  "Producto"
// @Success      200  {object}  dto.StockDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stock/{item_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	rec, err := h.queries.GetStock(c.Context(), c.Params("item_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToStockDTO(rec))
}

// Alerts godoc
// @Summary      Alertas de stock
// @Description  Productos en crítico, bajo, por vencer o vencido, ordenados por prioridad.
// @Tags         Stock
// @Produce      json
// @Success      200  {array}  dto.StockAlertDTO
// @Security     BearerAuth
// @Router       /api/stock/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.alerts.List(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToStockAlertDTOs(alerts))
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  delta positivo registra AJUSTE_POSITIVO, negativo AJUSTE_NEGATIVO. Siempre queda en el kardex.
// @Tags         Stock
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Llave de operación"
// @Param        body             body    dto.AdjustStockRequest  true   "Ajuste"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req dto.AdjustStockRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	res, err := h.ledger.AdjustStock(c.Context(), inventory.AdjustInput{
		ProductID:    req.ProductID,
		Delta:        req.Delta,
		Reason:       req.Reason,
		UnitCost:     req.UnitCost,
		Batch:        req.Batch,
		ExpiryDate:   req.ExpiryDate,
		Location:     req.Location,
		Actor:        GetActor(c),
		AuthorizedBy: toActor(req.AuthorizedBy),
		OperationKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(movementStatus(res)).JSON(dto.ToMovementResponse(res))
}

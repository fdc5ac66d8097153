package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// ReconciliationHandler conciliación kardex contra stock.
type ReconciliationHandler struct {
	uc  *inventory.ReconciliationUseCase
	log *logger.Logger
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(uc *inventory.ReconciliationUseCase, log *logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc, log: log}
}

// All godoc
// @Summary      Conciliar todos los productos
// @Tags         Conciliación
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReportDTO
// @Security     BearerAuth
// @Router       /api/reconciliation [get]
func (h *ReconciliationHandler) All(c *fiber.Ctx) error {
	rep, err := h.uc.ReconcileAll(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToReconciliationReportDTO(rep))
}

// ByProduct godoc
// @Summary      Conciliar un producto
// @Description  diferencia = stock_sistema - stock_calculado. consistent=false indica diferencia o saldos que no encadenan.
// @Tags         Conciliación
// @Produce      json
// @Param        item_id  path  string  true  "Producto"
// @Success      200  {object}  dto.ReconciliationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/reconciliation/{item_id} [get]
func (h *ReconciliationHandler) ByProduct(c *fiber.Ctx) error {
	rec, err := h.uc.Reconcile(c.Context(), c.Params("item_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToReconciliationDTO(rec))
}

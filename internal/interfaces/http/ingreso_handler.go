package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// IngresoHandler ciclo de vida de los ingresos de mercancía.
type IngresoHandler struct {
	uc  *inventory.IngresoUseCase
	log *logger.Logger
}

// NewIngresoHandler construye el handler.
func NewIngresoHandler(uc *inventory.IngresoUseCase, log *logger.Logger) *IngresoHandler {
	return &IngresoHandler{uc: uc, log: log}
}

func ingresoID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "identificador inválido")
	}
	return int64(id), nil
}

// Create godoc
// @Summary      Registrar ingreso
// @Description  Crea el ingreso en estado Creado. No modifica el stock hasta validarlo.
// @Tags         Ingresos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngresoRequest  true  "Ingreso"
// @Success      201  {object}  dto.IngresoDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos [post]
func (h *IngresoHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateIngresoRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	ing, err := h.uc.Create(c.Context(), dto.ToCreateIngresoInput(req), GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToIngresoDTO(ing))
}

// CreateBulk godoc
// @Summary      Carga masiva de ingresos
// @Description  Crea entre 1 y 1000 ingresos, cada uno en su propia transacción. Un elemento rechazado no detiene la carga; el resumen indica los creados y los errores por índice.
// @Tags         Ingresos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkIngresoRequest  true  "Ingresos"
// @Success      200  {object}  dto.BulkIngresoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos/masivo [post]
func (h *IngresoHandler) CreateBulk(c *fiber.Ctx) error {
	var req dto.BulkIngresoRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	items := make([]inventory.CreateIngresoInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = dto.ToCreateIngresoInput(it)
	}
	res, err := h.uc.CreateBulk(c.Context(), items, GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToBulkIngresoResponse(res, func(err error) (string, string) {
		status, body := apiError(err)
		if status == fiber.StatusInternalServerError {
			h.log.Error().Err(err).Msg("carga masiva: error interno en un elemento")
		}
		return body.Code, body.Message
	}))
}

// Search godoc
// @Summary      Buscar ingresos
// @Description  Coincidencia por subcadena sin distinguir mayúsculas en número, código de producto, proveedor y factura; rango de fechas de creación inclusive.
// @Tags         Ingresos
// @Produce      json
// @Param        receipt_number  query  string  false  "Número de ingreso"
// @Param        product_code    query  string  false  "Código de producto"
// @Param        supplier        query  string  false  "Proveedor"
// @Param        invoice         query  string  false  "Factura"
// @Param        condition       query  int     false  "0 Cancelado, 1 Creado, 2 Validado, 3 Cantidad modificada"
// @Param        from            query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to              query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        page            query  int     false  "Página"
// @Param        limit           query  int     false  "Tamaño de página (por defecto 50)"
// @Success      200  {object}  dto.IngresoListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos/search [get]
func (h *IngresoHandler) Search(c *fiber.Ctx) error {
	var params dto.IngresoSearchParams
	if ok, err := parseQuery(c, &params); !ok {
		return err
	}
	q := inventory.IngresoSearch{
		ReceiptNumber: params.ReceiptNumber,
		ProductCode:   params.ProductCode,
		Supplier:      params.Supplier,
		Invoice:       params.Invoice,
		Page:          params.Page,
		Limit:         params.Limit,
	}
	if params.Condition != nil {
		v := entity.Condition(*params.Condition)
		q.Condition = &v
	}
	var err error
	if q.From, err = parseDate(params.From, "from"); err != nil {
		return writeError(c, h.log, err)
	}
	if q.To, err = parseDate(params.To, "to"); err != nil {
		return writeError(c, h.log, err)
	}
	page, err := h.uc.Search(c.Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToIngresoListResponse(page))
}

// List godoc
// @Summary      Listar ingresos
// @Tags         Ingresos
// @Produce      json
// @Param        condition   query  int     false  "0 Cancelado, 1 Creado, 2 Validado, 3 Cantidad modificada"
// @Param        product_id  query  string  false  "Producto"
// @Param        page        query  int     false  "Página"
// @Param        limit       query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.IngresoListResponse
// @Security     BearerAuth
// @Router       /api/ingresos [get]
func (h *IngresoHandler) List(c *fiber.Ctx) error {
	var params dto.IngresoQueryParams
	if ok, err := parseQuery(c, &params); !ok {
		return err
	}
	var cond *entity.Condition
	if params.Condition != nil {
		v := entity.Condition(*params.Condition)
		cond = &v
	}
	page, err := h.uc.List(c.Context(), cond, params.ProductID, params.Page, params.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToIngresoListResponse(page))
}

// Pending godoc
// @Summary      Ingresos pendientes de validar
// @Tags         Ingresos
// @Produce      json
// @Param        page   query  int  false  "Página"
// @Param        limit  query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.IngresoListResponse
// @Security     BearerAuth
// @Router       /api/ingresos/pending [get]
func (h *IngresoHandler) Pending(c *fiber.Ctx) error {
	page, err := h.uc.Pending(c.Context(), c.QueryInt("page", 1), c.QueryInt("limit", inventory.DefaultLimit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToIngresoListResponse(page))
}

// Get godoc
// @Summary      Obtener ingreso
// @Tags         Ingresos
// @Produce      json
// @Param        id  path  int  true  "ID"
// @Success      200  {object}  dto.IngresoDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos/{id} [get]
func (h *IngresoHandler) Get(c *fiber.Ctx) error {
	id, err := ingresoID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ing, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToIngresoDTO(ing))
}

// Update godoc
// @Summary      Editar ingreso
// @Description  Solo ingresos en estado Creado. Los campos ausentes no cambian.
// @Tags         Ingresos
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID"
// @Param        body  body  dto.UpdateIngresoRequest  true  "Cambios"
// @Success      200  {object}  dto.IngresoDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos/{id} [put]
func (h *IngresoHandler) Update(c *fiber.Ctx) error {
	id, err := ingresoID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req dto.UpdateIngresoRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	ing, err := h.uc.Update(c.Context(), id, inventory.UpdateIngresoInput{
		Supplier:          req.Supplier,
		PurchaseOrder:     req.PurchaseOrder,
		Invoice:           req.Invoice,
		QuantityRequested: req.QuantityRequested,
		UnitCost:          req.UnitCost,
		Batch:             req.Batch,
		ExpiryDate:        req.ExpiryDate,
		Location:          req.Location,
		Document:          req.Document,
		Notes:             req.Notes,
	}, GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToIngresoDTO(ing))
}

// Validate godoc
// @Summary      Validar ingreso
// @Description  Registra la cantidad recibida, suma al stock y asienta INGRESO/COMPRA en el kardex en una sola transacción.
// @Tags         Ingresos
// @Accept       json
// @Produce      json
// @Param        id               path    int                         true   "ID"
// @Param        Idempotency-Key  header  string                      false  "Llave de operación"
// @Param        body             body    dto.ValidateIngresoRequest  true   "Recepción"
// @Success      200  {object}  dto.ValidateIngresoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos/{id}/validate [post]
func (h *IngresoHandler) Validate(c *fiber.Ctx) error {
	id, err := ingresoID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req dto.ValidateIngresoRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	res, err := h.uc.Validate(c.Context(), id, inventory.ValidateIngresoInput{
		QuantityReceived: req.QuantityReceived,
		Notes:            req.Notes,
		Location:         req.Location,
		OperationKey:     c.Get(HeaderIdempotencyKey),
	}, GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ValidateIngresoResponse{Ingreso: dto.ToIngresoDTO(res.Ingreso), Movement: dto.ToMovementResponse(res.Movement)})
}

// Cancel godoc
// @Summary      Cancelar ingreso
// @Description  Solo ingresos en estado Creado. El motivo se agrega a las observaciones.
// @Tags         Ingresos
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID"
// @Param        body  body  dto.CancelIngresoRequest  true  "Motivo"
// @Success      200  {object}  dto.IngresoDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/ingresos/{id}/cancel [post]
func (h *IngresoHandler) Cancel(c *fiber.Ctx) error {
	id, err := ingresoID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req dto.CancelIngresoRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	ing, err := h.uc.Cancel(c.Context(), id, req.Reason, GetActor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToIngresoDTO(ing))
}

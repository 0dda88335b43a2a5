package handler

import (
	"net/http"
	"strconv"
	"time"

	"burgerpos/internal/apierror"
	"burgerpos/internal/dto"
	"burgerpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// List godoc
// @Summary      Listar vendas
// @Tags         vendas
// @Produce      json
// @Security     BearerAuth
// @Param        shift_id        query string false "Turno"
// @Param        user_id         query string false "Operador"
// @Param        payment_method  query string false "Forma de pagamento"
// @Param        table           query int    false "Mesa (0 = balcão)"
// @Param        period          query string false "today | week | month | all"
// @Param        from            query string false "RFC3339"
// @Param        to              query string false "RFC3339, exclusivo"
// @Success      200  {array} model.Sale
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	f, err := parseSaleFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context(), f))
}

func parseSaleFilter(c *gin.Context) (dto.SaleFilter, error) {
	f := dto.SaleFilter{
		PaymentMethod: c.Query("payment_method"),
		Period:        c.Query("period"),
	}
	if v := c.Query("shift_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apierror.Validation("shift_id inválido")
		}
		f.ShiftID = &id
	}
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apierror.Validation("user_id inválido")
		}
		f.UserID = &id
	}
	if v := c.Query("table"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apierror.Validation("table inválido")
		}
		f.TableNumber = &n
	}
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, apierror.Validation("%s deve estar no formato RFC3339", q.name)
		}
		*q.dst = &t
	}
	return f, nil
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Void permanently removes a sale (admin).
func (h *SalesHandler) Void(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Void(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SalesHandler) CorrectPaymentMethod(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CorrectPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sale, err := h.svc.CorrectPaymentMethod(c.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

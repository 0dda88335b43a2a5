package handler

import (
	"net/http"

	"burgerpos/internal/model"
	"burgerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ShiftsHandler struct{ svc service.ShiftService }

func NewShiftsHandler(svc service.ShiftService) *ShiftsHandler { return &ShiftsHandler{svc: svc} }

// Open godoc
// @Summary      Abrir turno
// @Description  Encerra o turno ativo, se houver, e abre um novo para o usuário logado.
// @Tags         turnos
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object} model.Shift
// @Failure      409  {object} apierror.APIError
// @Router       /v1/shifts/open [post]
func (h *ShiftsHandler) Open(c *gin.Context) {
	sh, err := h.svc.Open(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sh)
}

// Close answers null when no shift was open.
func (h *ShiftsHandler) Close(c *gin.Context) {
	sh, err := h.svc.Close(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

func (h *ShiftsHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Current(c.Request.Context()))
}

// CurrentSales lists the sales of the active shift; empty when none is open.
func (h *ShiftsHandler) CurrentSales(c *gin.Context) {
	sales := h.svc.CurrentShiftSales(c.Request.Context())
	if sales == nil {
		sales = []model.Sale{}
	}
	c.JSON(http.StatusOK, sales)
}

func (h *ShiftsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context()))
}

func (h *ShiftsHandler) Summary(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sum, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

package handler

import (
	"net/http"

	"burgerpos/internal/dto"
	"burgerpos/internal/model"
	"burgerpos/internal/service"

	"github.com/gin-gonic/gin"
)

// SurfacesHandler serves the counter cart (id 0) and the tables.
type SurfacesHandler struct{ svc service.SurfaceService }

func NewSurfacesHandler(svc service.SurfaceService) *SurfacesHandler {
	return &SurfacesHandler{svc: svc}
}

func (h *SurfacesHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context()))
}

func (h *SurfacesHandler) Get(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	h.respond(c, func() (*model.Surface, error) { return h.svc.Get(c.Request.Context(), id) })
}

// AddItem godoc
// @Summary      Lançar item
// @Description  Adiciona um produto (código ou id) ao carrinho ou à mesa. Quantidade padrão 1.
// @Tags         mesas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                 true "Número da mesa (0 = balcão)"
// @Param        body body     dto.AddItemRequest  true "Produto e quantidade"
// @Success      200  {object} model.Surface
// @Failure      409  {object} apierror.APIError
// @Router       /v1/surfaces/{id}/items [post]
func (h *SurfacesHandler) AddItem(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	h.respond(c, func() (*model.Surface, error) {
		return h.svc.AddItem(c.Request.Context(), id, req.Product, qty)
	})
}

func (h *SurfacesHandler) SetQuantity(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	var req dto.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c, func() (*model.Surface, error) {
		return h.svc.SetQuantity(c.Request.Context(), id, productID, req.Quantity)
	})
}

func (h *SurfacesHandler) RemoveItem(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	h.respond(c, func() (*model.Surface, error) {
		return h.svc.RemoveItem(c.Request.Context(), id, productID)
	})
}

func (h *SurfacesHandler) RequestBill(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	h.respond(c, func() (*model.Surface, error) { return h.svc.RequestBill(c.Request.Context(), id) })
}

func (h *SurfacesHandler) Clear(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	h.respond(c, func() (*model.Surface, error) { return h.svc.Clear(c.Request.Context(), id) })
}

func (h *SurfacesHandler) respond(c *gin.Context, fn func() (*model.Surface, error)) {
	sf, err := fn()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sf)
}

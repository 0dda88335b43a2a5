package handler

import (
	"net/http"

	"burgerpos/internal/dto"
	"burgerpos/internal/model"
	"burgerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	svc       service.CheckoutService
	shortcuts *service.ShortcutDispatcher
}

func NewCheckoutHandler(svc service.CheckoutService, shortcuts *service.ShortcutDispatcher) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, shortcuts: shortcuts}
}

// Checkout godoc
// @Summary      Finalizar venda
// @Description  Registra a venda do carrinho ou da mesa com uma forma de pagamento e libera a superfície.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                  true "Número da mesa (0 = balcão)"
// @Param        body body     dto.CheckoutRequest  true "Pagamento e desconto"
// @Success      201  {object} model.Sale
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/surfaces/{id}/checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.shortcuts.Select(id, req.PaymentMethod)

	sale, err := h.svc.CompleteSale(c.Request.Context(), id, req.PaymentMethod, req.Discount, req.DiscountType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// CheckoutSplit records one sale paid by several methods.
func (h *CheckoutHandler) CheckoutSplit(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	var req dto.SplitCheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	payments := make([]model.Payment, len(req.Payments))
	for i, p := range req.Payments {
		payments[i] = model.Payment{Method: p.Method, Amount: p.Amount}
	}

	sale, err := h.svc.CompleteSaleSplit(c.Request.Context(), id, payments, req.Discount, req.DiscountType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// Shortcut handles the register keys 1-5 and Enter.
func (h *CheckoutHandler) Shortcut(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	var req dto.ShortcutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sale, err := h.shortcuts.Dispatch(c.Request.Context(), id, req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

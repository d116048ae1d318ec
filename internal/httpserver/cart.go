package httpserver

import (
	"fmt"
	"net/http"
	"slices"

	"storefront/internal/domain"
	"storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	"storefront/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	Items      []domain.LineItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Tax        decimal.Decimal   `json:"tax"`
	Shipping   decimal.Decimal   `json:"shipping"`
	Total      decimal.Decimal   `json:"total"`
}

func (h *handlers) cartFor(c *gin.Context) (*cart.Store, bool) {
	store, err := h.deps.CartSvc.Get(c.Request.Context(), sessionFrom(c).UserID())
	if err != nil {
		h.writeError(c, "open cart", err)
		return nil, false
	}
	return store, true
}

func (h *handlers) respondCart(c *gin.Context, store *cart.Store) {
	snap := store.Snapshot()
	items := snap.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	resp := cartResponse{Items: items, TotalItems: snap.TotalItems, TotalPrice: snap.TotalPrice}
	_, resp.Tax, resp.Shipping, resp.Total = h.deps.CheckoutSvc.Quote(snap)
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) getCart(c *gin.Context) {
	store, ok := h.cartFor(c)
	if !ok {
		return
	}
	h.respondCart(c, store)
}

// addCartItem snapshots the catalog product into the cart. Name, image and
// price are taken from the catalog, never from the request.
func (h *handlers) addCartItem(c *gin.Context) {
	var req validation.AddCartItemRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		h.writeError(c, "add cart item", err)
		return
	}
	if err := checkVariant("size", req.Size, p.Sizes); err != nil {
		h.writeError(c, "add cart item", err)
		return
	}
	if err := checkVariant("color", req.Color, p.Colors); err != nil {
		h.writeError(c, "add cart item", err)
		return
	}

	store, ok := h.cartFor(c)
	if !ok {
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	store.AddItem(cart.Item{
		ID:    p.ID,
		Name:  p.Name,
		Image: p.Image,
		Price: p.Price,
		Size:  req.Size,
		Color: req.Color,
	}, quantity)
	h.respondCart(c, store)
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req validation.UpdateQuantityRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	store, ok := h.cartFor(c)
	if !ok {
		return
	}
	store.UpdateQuantity(c.Param("id"), *req.Quantity)
	h.respondCart(c, store)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	store, ok := h.cartFor(c)
	if !ok {
		return
	}
	store.RemoveItem(c.Param("id"))
	h.respondCart(c, store)
}

func (h *handlers) clearCart(c *gin.Context) {
	store, ok := h.cartFor(c)
	if !ok {
		return
	}
	store.Clear()
	h.respondCart(c, store)
}

func (h *handlers) checkout(c *gin.Context) {
	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	s := sessionFrom(c)
	email := req.CustomerEmail
	if email == "" && s.User != nil {
		email = s.User.Email
	}
	order, err := h.deps.CheckoutSvc.PlaceOrder(c.Request.Context(), s.UserID(), checkout.Details{
		PaymentMethod: req.PaymentMethod,
		ShippingAddress: domain.Address{
			FullName:   req.ShippingAddress.FullName,
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		CustomerEmail: email,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeError(c, "checkout", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.CheckoutSvc.Orders(c.Request.Context(), sessionFrom(c).UserID())
	if err != nil {
		h.writeError(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func checkVariant(kind, value string, allowed []string) error {
	if value == "" || len(allowed) == 0 || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s %q is not offered for this product: %w", kind, value, domain.ErrInvalidInput)
}

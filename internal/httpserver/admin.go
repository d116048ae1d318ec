package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *handlers) adminLanding(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.deps.ProductSvc.List(ctx, "")
	if err != nil {
		h.writeError(c, "admin landing", err)
		return
	}
	orders, err := h.deps.CheckoutSvc.AllOrders(ctx)
	if err != nil {
		h.writeError(c, "admin landing", err)
		return
	}
	pending := 0
	for _, o := range orders {
		if o.Status == domain.OrderStatusPending {
			pending++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          sessionFrom(c).User,
		"products":      len(products),
		"orders":        len(orders),
		"pendingOrders": pending,
	})
}

func (h *handlers) createProduct(c *gin.Context) {
	var req validation.ProductRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), toProduct(req))
	if err != nil {
		h.writeError(c, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req validation.ProductRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), c.Param("id"), toProduct(req))
	if err != nil {
		h.writeError(c, "update product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listAllOrders(c *gin.Context) {
	orders, err := h.deps.CheckoutSvc.AllOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, "list all orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

func (h *handlers) uploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, "open upload", err)
		return
	}
	defer f.Close()

	img, err := h.deps.MediaSvc.Upload(c.Request.Context(), f, fh.Filename, fh.Size)
	if err != nil {
		h.writeError(c, "upload image", err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

// deleteImage removes an uploaded image. Public ids carry the folder, so the
// route takes the rest of the path.
func (h *handlers) deleteImage(c *gin.Context) {
	publicID := strings.Trim(c.Param("publicID"), "/")
	if publicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "public id required"})
		return
	}
	if err := h.deps.MediaSvc.Delete(c.Request.Context(), publicID); err != nil {
		h.writeError(c, "delete image", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toProduct(req validation.ProductRequest) domain.Product {
	return domain.Product{
		Key:           req.Key,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Image:         req.Image,
		Images:        req.Images,
		Category:      req.Category,
		Inventory:     req.Inventory,
		Sizes:         req.Sizes,
		Colors:        req.Colors,
	}
}

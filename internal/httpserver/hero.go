package httpserver

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/hero"
	"storefront/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listHeroImages(c *gin.Context) {
	if h.deps.HeroSvc == nil {
		c.JSON(http.StatusOK, domain.HeroSettings{Images: []domain.HeroImage{}})
		return
	}
	settings, err := h.deps.HeroSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "list hero images", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// addHeroImages uploads every part under "files" (or a single "file") and
// appends them to the carousel in request order.
func (h *handlers) addHeroImages(c *gin.Context) {
	if h.deps.HeroSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hero images unavailable"})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["file"]...)
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"files\" required"})
		return
	}

	files := make([]hero.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.writeError(c, "open upload", err)
			return
		}
		opened = append(opened, f)
		files = append(files, hero.File{Reader: f, Filename: fh.Filename, Size: fh.Size})
	}

	settings, err := h.deps.HeroSvc.Add(c.Request.Context(), files)
	if err != nil {
		h.writeError(c, "add hero images", err)
		return
	}
	c.JSON(http.StatusCreated, settings)
}

func (h *handlers) replaceHeroImages(c *gin.Context) {
	if h.deps.HeroSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hero images unavailable"})
		return
	}
	var req validation.HeroImagesRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	images := make([]domain.HeroImage, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, domain.HeroImage{URL: img.URL, PublicID: img.PublicID})
	}
	settings, err := h.deps.HeroSvc.Replace(c.Request.Context(), images)
	if err != nil {
		h.writeError(c, "replace hero images", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handlers) removeHeroImage(c *gin.Context) {
	if h.deps.HeroSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hero images unavailable"})
		return
	}
	index, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	settings, err := h.deps.HeroSvc.Remove(c.Request.Context(), index)
	if err != nil {
		h.writeError(c, "remove hero image", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trustgate/internal/middleware"
	"trustgate/internal/repository"
	"trustgate/internal/service"
)

type createProductRequest struct {
	Name        string   `json:"name" binding:"required,min=2"`
	Description string   `json:"description" binding:"required,min=5"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	ShopID      *string  `json:"shopId"`
	CategoryID  *string  `json:"categoryId"`
	Images      []string `json:"images" binding:"required,min=1,dive,min=3"`
}

type productImageResponse struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	Score       *int     `json:"score"`
	Reasons     []string `json:"reasons"`
	CameraMake  *string  `json:"cameraMake,omitempty"`
	CameraModel *string  `json:"cameraModel,omitempty"`
}

type productResponse struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Price    float64                `json:"price"`
	Status   string                 `json:"status"`
	IsActive bool                   `json:"isActive"`
	Images   []productImageResponse `json:"images"`
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	product, err := h.products.Create(c.Request.Context(), service.CreateProductInput{
		UserID:      principal.UserID,
		ShopID:      req.ShopID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImagePaths:  req.Images,
	})
	if err != nil {
		h.internalError(c, err, "create product failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product created. Images will be verified shortly.",
		"productId": product.ID,
	})
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	view, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		h.internalError(c, err, "get product failed")
		return
	}

	resp := productResponse{
		ID:       view.Product.ID,
		Name:     view.Product.Name,
		Price:    view.Product.Price,
		Status:   string(view.Product.Status),
		IsActive: view.Product.IsActive,
		Images:   make([]productImageResponse, 0, len(view.Images)),
	}
	for _, img := range view.Images {
		reasons := img.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		resp.Images = append(resp.Images, productImageResponse{
			ID:          img.ID,
			Status:      string(img.Status),
			Score:       img.Score,
			Reasons:     reasons,
			CameraMake:  img.CameraMake,
			CameraModel: img.CameraModel,
		})
	}

	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/handler/dto"
	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/keymint/keymint-api/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	service *service.ProductService
	logger  *zap.Logger
}

func NewProductHandler(service *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.Named("ProductHandler"),
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind create product request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	productID, err := h.service.CreateProduct(c.Request.Context(), req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Product created via handler", zap.String("product_id", productID))
	c.JSON(http.StatusOK, dto.CreateProductResponse{ProductID: productID})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	var req dto.DeleteProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind delete product request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), req.Name); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Product deleted successfully"})
}

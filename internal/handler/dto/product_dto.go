package dto

type CreateProductRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateProductResponse struct {
	ProductID string `json:"product_id"`
}

type DeleteProductRequest struct {
	Name string `json:"name" binding:"required"`
}

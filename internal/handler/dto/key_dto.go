package dto

type CreateKeyRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Duration  string `json:"duration" binding:"required"`
}

type CreateKeyResponse struct {
	Key string `json:"key"`
}

type DeleteKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

type ResetHWIDRequest struct {
	Key string `json:"key" binding:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

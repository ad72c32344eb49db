package dto

import "time"

type ClaimKeyRequest struct {
	Key  string `json:"key" binding:"required"`
	HWID string `json:"hwid" binding:"required"`
}

type ClaimKeyResponse struct {
	Key       string    `json:"key"`
	Product   string    `json:"product"`
	ExpiresAt time.Time `json:"expires_at"`
}

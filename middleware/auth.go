package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MerchantContextKey = "merchantID"

// MerchantAuth reads the merchant identity header injected by the API
// gateway.
func MerchantAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantID := c.GetHeader("X-Merchant-ID")

		// Fallback to cookie (set by API gateway) if header missing
		if merchantID == "" {
			if v, err := c.Cookie("merchant_id"); err == nil && v != "" {
				merchantID = v
			}
		}

		if merchantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		id, err := uuid.Parse(merchantID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid merchant ID"})
			c.Abort()
			return
		}

		c.Set(MerchantContextKey, id)
		c.Next()
	}
}

// GetMerchantID extracts the merchant ID from the Gin context.
func GetMerchantID(c *gin.Context) (uuid.UUID, error) {
	if val, ok := c.Get(MerchantContextKey); ok {
		if id, ok := val.(uuid.UUID); ok && id != uuid.Nil {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("merchant ID not found in context")
}

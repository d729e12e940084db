package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID tags every request with an id so a single tutoring call can be
// followed through the log stream. An inbound X-Request-Id is reused; browser
// clients typically don't send one, so most requests get a fresh uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// RequestIDFrom returns the id RequestID assigned, or "" outside the
// middleware chain.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

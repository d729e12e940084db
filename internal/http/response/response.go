package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the wire shape every failed request returns. Clients key on
// StatusCode rather than parsing the message.
type ErrorEnvelope struct {
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"statusCode"`
}

func RespondError(c *gin.Context, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error:      msg,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		StatusCode: status,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

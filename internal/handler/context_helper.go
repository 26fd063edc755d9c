package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edupro-navigator/internal/middleware"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/response"
)

// currentUserID returns the caller resolved by the JWT middleware. When none
// is present it writes a NOT_AUTHENTICATED response and reports false.
func currentUserID(c *gin.Context) (string, bool) {
	claims := middleware.Claims(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return "", false
	}
	return claims.UserID, true
}

func bindJSON(c *gin.Context, dest interface{}, payload string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+payload+" payload"))
		return false
	}
	return true
}

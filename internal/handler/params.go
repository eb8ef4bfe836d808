package handler

import (
	"net/http"
	"strconv"

	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
)

// pathID parses a numeric path parameter, writing the error response on
// failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Identificador invalido.")
		return 0, false
	}
	return uint(id), true
}

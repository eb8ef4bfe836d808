package handler

import (
	"errors"
	"net/http"

	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError maps service-layer errors onto the HTTP envelope.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Fields)
	case errors.Is(err, util.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, util.ErrNotFound.Error())
	case errors.Is(err, util.ErrInvalidGroup):
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"installment": {"Conta selecionada nao pertence a um grupo de parcelamento."},
		})
	case errors.Is(err, util.ErrConflict):
		util.Error(c, http.StatusConflict, util.CodeConflict, util.ErrConflict.Error())
	default:
		log.Error("request failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Erro interno.")
	}
}

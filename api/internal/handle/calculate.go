package handle

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mathcalc/api/internal/calc"
)

// CalculateRequest accepts "variables" and the legacy "dict_of_vars" field.
type CalculateRequest struct {
	Image      string         `json:"image" binding:"required"`
	Variables  calc.Variables `json:"variables"`
	DictOfVars calc.Variables `json:"dict_of_vars"`
}

// Vars merges both variable fields; "variables" wins on conflicts.
func (r CalculateRequest) Vars() calc.Variables {
	out := make(calc.Variables, len(r.Variables)+len(r.DictOfVars))
	for k, v := range r.DictOfVars {
		out[k] = v
	}
	for k, v := range r.Variables {
		out[k] = v
	}
	return out
}

func (h *Handle) Calculate(c *gin.Context) {
	sugar := h.log.Sugar()

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		err = fmt.Errorf("%w: %w", calc.ErrInvalidInput, err)
		sugar.Warnw("calculate: bad request", "error", err)
		writeError(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	img, err := calc.DecodeImage(req.Image, h.opts.MaxImagePixels)
	if err != nil {
		sugar.Warnw("calculate: bad image", "error", err)
		writeError(c, calc.HTTPStatus(err), calc.PublicMessage(err))
		return
	}

	records, err := h.analyzer.Analyze(c.Request.Context(), img, req.Vars())
	if err != nil {
		sugar.Errorw("calculate: analysis failed",
			"error", err,
			"status", calc.HTTPStatus(err),
		)
		writeError(c, calc.HTTPStatus(err), calc.PublicMessage(err))
		return
	}

	sugar.Infow("calculate: image processed",
		"records", len(records),
		"width", img.Width,
		"height", img.Height,
	)
	c.JSON(http.StatusOK, Envelope{
		Message: "Image processed",
		Data:    records,
		Status:  statusSuccess,
	})
}

func bindMessage(err error) string {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Sprintf("%s: request body exceeds %d bytes", calc.ErrInvalidInput, mbe.Limit)
	}
	return calc.PublicMessage(err)
}

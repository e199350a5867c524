package history

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/operations", h.List)
	r.GET("/operations/stats", h.Stats)
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		ManagementNumber: c.Query("management_number"),
		Action:           c.Query("action"),
		From:             c.Query("from"),
		To:               c.Query("to"),
		Limit:            parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset:           parseIntDefault(c.Query("offset"), 0),
	}
	res, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Stats(c *gin.Context) {
	res, err := h.svc.Stats(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorFromErr(err error) errorDTO {
	var e errorDTO
	e.Error.Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		e.Error.Code, e.Error.Message = api.Code, api.Message
	} else {
		e.Error.Message = err.Error()
	}
	return e
}

package labels

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	// GET /labels/csv?management_numbers=A-001,A-002
	r.GET("/labels/csv", h.CSV)
}

func (h *Handler) CSV(c *gin.Context) {
	raw := c.Query("management_numbers")
	mns := strings.Split(raw, ",")

	data, err := h.svc.BuildCSV(c.Request.Context(), mns)
	if err != nil {
		var body struct {
			Error any `json:"error"`
		}
		body.Error = errFor(err)
		c.JSON(toHTTPStatus(err), body)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="labels.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=Shift_JIS", data)
}

func errFor(err error) any {
	if api, ok := err.(*APIError); ok {
		return api
	}
	return &APIError{Code: CodeInternal, Message: err.Error()}
}

package inout

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc   *Service
	sched *Scheduler
}

func RegisterRoutes(r gin.IRoutes, admin gin.IRoutes, svc *Service, sched *Scheduler) {
	h := &Handler{svc: svc, sched: sched}

	// 入出画面用の一覧（可視性フィルタ適用）
	r.GET("/instruments/inout", h.ListOperational)

	// QRスキャンでの個別取得
	r.GET("/instruments/inout/:management_number", h.Get)

	// 遷移操作
	r.POST("/instruments/:management_number/checkout", h.CheckOut)
	r.POST("/instruments/:management_number/checkin", h.CheckIn)
	r.POST("/instruments/:management_number/use", h.MarkUsed)
	r.POST("/instruments/:management_number/borrow", h.Borrow)
	r.POST("/instruments/:management_number/delay", h.Delay)
	r.POST("/instruments/:management_number/clear", h.ClearToday)

	// 手動での日次リセット（adminのみ）
	admin.POST("/instruments/reset", h.ManualReset)
}

func (h *Handler) ListOperational(c *gin.Context) {
	res, err := h.svc.ListOperational(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.GetByManagementNumber(c.Request.Context(), c.Param("management_number"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CheckOut(c.Request.Context(), c.Param("management_number"), req.Operator)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CheckIn(c.Request.Context(), c.Param("management_number"), req.Operator)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MarkUsed(c *gin.Context) {
	var req MarkUsedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.MarkUsed(c.Request.Context(), c.Param("management_number"), req.Operator)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Borrow(c.Request.Context(), c.Param("management_number"), req.Borrower)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delay(c *gin.Context) {
	var req DelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Delay(c.Request.Context(), c.Param("management_number"), req.Days, req.Operator)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ClearToday(c *gin.Context) {
	res, err := h.svc.ClearToday(c.Request.Context(), c.Param("management_number"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ManualReset(c *gin.Context) {
	n := h.sched.RunOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"changed": n})
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}

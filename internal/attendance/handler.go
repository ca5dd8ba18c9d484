package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staffhub-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/attendance/check-in", h.CheckIn)
	r.POST("/attendance/check-out", h.CheckOut)
	r.PUT("/attendance/break", h.UpdateBreak)
	r.GET("/attendance", h.List)
	r.GET("/attendance/today", h.Today)

	// Manager override + reporting.
	r.POST("/attendance/mark", auth.RequireRole(auth.RoleManager, auth.RoleAdmin), h.Mark)
	r.GET("/attendance/export", auth.RequireRole(auth.RoleManager, auth.RoleAdmin), h.Export)
}

// ---------- handlers ----------

func (h *Handler) CheckIn(c *gin.Context) {
	res, err := h.svc.CheckIn(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	msg := "Checked in successfully"
	if res.Status == StatusLate {
		msg += " (marked as late)"
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg, "attendance": res})
}

func (h *Handler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	// Body is optional; notes only.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
			return
		}
	}

	res, err := h.svc.CheckOut(c.Request.Context(), auth.StaffID(c), req.Notes)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checked out successfully", "attendance": res})
}

func (h *Handler) UpdateBreak(c *gin.Context) {
	var req BreakRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BreakMinutes == nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "break_minutes is required"))
		return
	}

	res, err := h.svc.UpdateBreak(c.Request.Context(), auth.StaffID(c), *req.BreakMinutes)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Break duration updated", "attendance": res})
}

func (h *Handler) Mark(c *gin.Context) {
	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "staff_id, date and status are required"))
		return
	}

	in := MarkInput{
		StaffID:      req.StaffID,
		Date:         req.Date,
		Status:       req.Status,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		Notes:        req.Notes,
	}
	if req.BreakDuration != nil {
		in.BreakDuration = *req.BreakDuration
	}

	res, created, err := h.svc.Mark(c.Request.Context(), in)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"message": "Attendance marked successfully", "attendance": res})
}

func (h *Handler) List(c *gin.Context) {
	staffID := auth.StaffID(c)
	// Managers may inspect other staff's history.
	if v := c.Query("staff_id"); v != "" && v != staffID {
		if !auth.IsPrivileged(c) {
			c.JSON(http.StatusForbidden, errorBody(CodePermissionDenied, "cannot view other staff's attendance"))
			return
		}
		staffID = v
	}

	q := ListQuery{
		StaffID: staffID,
		Limit:   parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset:  parseIntDefault(c.Query("offset"), 0),
		Sort:    c.DefaultQuery("sort", DefaultSort),
	}
	if v := c.Query("from"); v != "" {
		q.From = &v
	}
	if v := c.Query("to"); v != "" {
		q.To = &v
	}

	rows, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rows, "total": total})
}

func (h *Handler) Today(c *gin.Context) {
	res, err := h.svc.Today(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, errorBody(CodeNotFound, "no attendance record for today"))
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

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	var api *APIError
	if errors.As(err, &api) {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}

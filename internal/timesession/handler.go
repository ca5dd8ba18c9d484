package timesession

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

	r.POST("/sessions/start", h.Start)
	r.POST("/sessions/stop", h.Stop)
	r.PUT("/sessions/active/task", h.SwitchTask)
	r.PUT("/sessions/active/description", h.UpdateDescription)
	r.POST("/sessions/manual", h.ManualEntry)
	r.GET("/sessions", h.List)
	r.GET("/sessions/active", h.Active)
}

// ---------- handlers ----------

func (h *Handler) Start(c *gin.Context) {
	var req StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
			return
		}
	}

	res, err := h.svc.Start(c.Request.Context(), auth.StaffID(c), req.TaskID, req.Description)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Time tracking started", "session": res})
}

func (h *Handler) Stop(c *gin.Context) {
	var req StopRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
			return
		}
	}

	res, err := h.svc.Stop(c.Request.Context(), auth.StaffID(c), req.Notes)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	msg := "Time session stopped"
	if res.Duration != nil {
		msg += ". Duration: " + FormatDuration(*res.Duration)
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "session": res})
}

func (h *Handler) SwitchTask(c *gin.Context) {
	var req SwitchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	if err := h.svc.SwitchTask(c.Request.Context(), auth.StaffID(c), req.TaskID); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session task updated"})
}

func (h *Handler) UpdateDescription(c *gin.Context) {
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "description is required"))
		return
	}

	if err := h.svc.UpdateDescription(c.Request.Context(), auth.StaffID(c), req.Description); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session description updated"})
}

func (h *Handler) ManualEntry(c *gin.Context) {
	var req ManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "date, start_time and end_time are required"))
		return
	}

	res, err := h.svc.ManualEntry(c.Request.Context(), auth.StaffID(c), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Manual time entry created successfully", "session": res})
}

func (h *Handler) List(c *gin.Context) {
	staffID := auth.StaffID(c)
	if v := c.Query("staff_id"); v != "" && v != staffID {
		if !auth.IsPrivileged(c) {
			c.JSON(http.StatusForbidden, errorBody(CodePermissionDenied, "cannot view other staff's sessions"))
			return
		}
		staffID = v
	}

	q := ListQuery{
		StaffID: staffID,
		Limit:   parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset:  parseIntDefault(c.Query("offset"), 0),
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
	c.JSON(http.StatusOK, gin.H{"sessions": rows, "total": total})
}

func (h *Handler) Active(c *gin.Context) {
	res, err := h.svc.Active(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, errorBody(CodeNotFound, "no active time session found"))
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

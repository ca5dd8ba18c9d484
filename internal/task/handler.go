package task

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

	// Assignment is a manager action; the original let any caller create
	// tasks, which looked unintentional.
	r.POST("/tasks", auth.RequireRole(auth.RoleManager, auth.RoleAdmin), h.Create)

	r.GET("/tasks", h.List)
	r.GET("/tasks/:id", h.Get)
	r.PUT("/tasks/:id", h.Update)
	r.PUT("/tasks/:id/status", h.UpdateStatus)
	r.POST("/tasks/:id/comments", h.AddComment)
}

// ---------- handlers ----------

func (h *Handler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "title and assigned_to are required"))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), auth.StaffID(c), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/tasks/"+res.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task": res})
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), auth.StaffID(c), auth.IsPrivileged(c), c.Param("id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "title is required"))
		return
	}

	res, err := h.svc.Update(c.Request.Context(), auth.StaffID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "task": res})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "status is required"))
		return
	}

	res, err := h.svc.UpdateStatus(c.Request.Context(), auth.StaffID(c), c.Param("id"), req.Status)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": res})
}

func (h *Handler) AddComment(c *gin.Context) {
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "comment is required"))
		return
	}

	res, err := h.svc.AddComment(c.Request.Context(), auth.StaffID(c), c.Param("id"), req.Comment)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully", "comment": res})
}

func (h *Handler) List(c *gin.Context) {
	staffID := auth.StaffID(c)
	if v := c.Query("staff_id"); v != "" && v != staffID {
		if !auth.IsPrivileged(c) {
			c.JSON(http.StatusForbidden, errorBody(CodePermissionDenied, "cannot view other staff's tasks"))
			return
		}
		staffID = v
	}

	q := ListQuery{
		AssignedTo: staffID,
		Limit:      parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset:     parseIntDefault(c.Query("offset"), 0),
	}
	if v := c.Query("status"); v != "" {
		q.Status = &v
	}

	rows, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": rows, "total": total})
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

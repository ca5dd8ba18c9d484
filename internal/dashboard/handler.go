package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffhub-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/dashboard/staff", h.Staff)
	r.GET("/dashboard/manager", auth.RequireRole(auth.RoleManager, auth.RoleAdmin), h.Manager)
}

// ---------- handlers ----------

func (h *Handler) Staff(c *gin.Context) {
	out, err := h.svc.Staff(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Manager(c *gin.Context) {
	out, err := h.svc.Manager(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

// ---------- error DTO (attendance と同型) ----------

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

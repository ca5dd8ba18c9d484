package staff

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffhub-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/me", h.Me)
	r.GET("/staff", h.List)

	r.PATCH("/staff/:id", auth.RequireRole(auth.RoleAdmin), h.UpdateDetails)
	r.DELETE("/staff/:id", auth.RequireRole(auth.RoleAdmin), h.Deactivate)
}

func (h *Handler) Me(c *gin.Context) {
	res, err := h.svc.Me(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": res, "total": len(res)})
}

func (h *Handler) UpdateDetails(c *gin.Context) {
	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	if err := h.svc.UpdateDetails(c.Request.Context(), c.Param("id"), req.Department, req.Position); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "staff profile updated"})
}

func (h *Handler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "staff profile deactivated"})
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

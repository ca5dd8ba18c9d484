package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the public endpoints (no token required).
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/setup", h.Setup)
	r.POST("/auth/logout", h.Logout)
}

// RegisterAdminRoutes mounts user provisioning; the caller wraps the group
// with RequireAuth + RequireRole(admin).
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/users", h.CreateUser)
	r.GET("/users", h.ListUsers)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}
		// Same message for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      res.Token,
		"staff_id":   res.StaffID,
		"role":       res.Role,
		"first_name": res.FirstName,
		"last_name":  res.LastName,
		"message":    "Login successful",
	})
}

type RegisterRequest struct {
	Email      string  `json:"email" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	EmployeeID string  `json:"employee_id" binding:"required"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all required fields must be filled"})
		return
	}

	id, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		if errors.Is(err, ErrEmployeeIDTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "employee id already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"staff_id": id,
		"message":  "Account created successfully",
	})
}

func (h *Handler) Setup(c *gin.Context) {
	created, err := h.svc.Setup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "setup failed"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Admin user already exists. You can login with " + DefaultAdminEmail + " / " + DefaultAdminPassword,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Default admin user created successfully. Change the default password after first login.",
		"email":   DefaultAdminEmail,
	})
}

// Logout exists for API symmetry; tokens are stateless and expire on their
// own, so the client just drops its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role" binding:"required"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all required fields must be filled"})
		return
	}
	if !ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be staff, manager or admin"})
		return
	}

	id, err := h.svc.CreateUser(c.Request.Context(), RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
		Position:   req.Position,
	}, req.Role)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrEmployeeIDTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"staff_id": id, "message": "user created"})
}

type userDTO struct {
	StaffID    string    `json:"staff_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsDisabled bool      `json:"is_disabled"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	accounts, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	out := make([]userDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, userDTO{
			StaffID:    a.ID,
			Email:      a.Email,
			Role:       a.Role,
			FirstName:  a.FirstName,
			LastName:   a.LastName,
			IsDisabled: a.IsDisabled,
			CreatedAt:  a.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "total": len(out)})
}

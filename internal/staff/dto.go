package staff

type ProfileResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Role       string  `json:"role"`
	HireDate   string  `json:"hire_date"`
	IsActive   bool    `json:"is_active"`
}

type UpdateDetailsRequest struct {
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

package adminsdk

// ============================================================================
// Request Types
// ============================================================================

// RegisterRequest is the payload for POST /user/register.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the payload for POST /user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the payload for POST /user/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload for POST /user/reset-password.
// Token is the plaintext reset token taken from the emailed link.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UpdatePasswordRequest is the payload for POST /user/update-password.
type UpdatePasswordRequest struct {
	UserID          int64  `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ============================================================================
// Response Types
// ============================================================================

// UserPayload is the public view of a user account. The password hash and
// any pending reset token material are never serialized.
type UserPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AuthResponse is returned by register and login on success.
type AuthResponse struct {
	Status string      `json:"status"`
	Data   UserPayload `json:"data"`
	Token  string      `json:"token"`
}

// MessageResponse is returned by the password maintenance endpoints
// (forgot, reset and update) on success.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
// This is used internally for parsing HTTP error responses; client code
// should use the APIError type from errors.go instead.
type ErrorResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

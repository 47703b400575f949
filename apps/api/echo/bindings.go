package echoapi

import "github.com/trezcool/kelasi/core"

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	MarkAttendanceRequest struct {
		Code string `json:"code" validate:"required"`
	}
)

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

// codes are compared verbatim, so no case folding here
func (r *MarkAttendanceRequest) Validate() error {
	r.Code = core.CleanString(r.Code)
	return core.Validate.Struct(r)
}

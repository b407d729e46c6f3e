package handler

import (
	"time"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"  validate:"required"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	Role     string `json:"role"      validate:"omitempty,oneof=user admin"`
	AdminKey string `json:"admin_key"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// --- Users ---

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// --- Reports ---

type reportResponse struct {
	ReportID  int64     `json:"report_id"`
	UserID    int64     `json:"user_id"`
	City      string    `json:"city"`
	Status    string    `json:"status"`
	FilePath  *string   `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

type reportPageResponse struct {
	CurrentPage int              `json:"current_page"`
	Limit       int              `json:"limit"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"total_pages"`
	Items       []reportResponse `json:"items"`
}

func toReportResponse(r *domain.Report) reportResponse {
	return reportResponse{
		ReportID:  r.ID,
		UserID:    r.UserID,
		City:      r.City,
		Status:    string(r.Status),
		FilePath:  r.FilePath,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func toReportPageResponse(p *ports.ReportPage) reportPageResponse {
	items := make([]reportResponse, 0, len(p.Items))
	for _, r := range p.Items {
		items = append(items, toReportResponse(r))
	}
	return reportPageResponse{
		CurrentPage: p.Page,
		Limit:       p.Limit,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		Items:       items,
	}
}

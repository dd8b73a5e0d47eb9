package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/request"
	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/api/middleware"
	"github.com/civeni/civeni-api/internal/config"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/pkg/jwthelper"
	"github.com/civeni/civeni-api/internal/service"
)

type AdminService interface {
	Signup(ctx context.Context, user domain.AdminUser) (domain.AdminUser, error)
	Login(ctx context.Context, email, password string) (domain.AdminUser, error)
	GetAdmin(ctx context.Context, id uint) (domain.AdminUser, error)
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AdminService
}

func NewAuthHandler(conf *config.APIConfig, svc AdminService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleCreateAdmin godoc
// @Summary      Create an admin user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateAdminRequest true "request body"
// @Success      201      {object}   domain.AdminUser
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/users [post]
// @Security BearerAuth
func (h *AuthHandler) HandleCreateAdmin(ctx *gin.Context) {
	var req request.CreateAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.AdminUser{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, service.ErrAdminEmailExists) {
			response.RenderErr(ctx, response.ErrConflict("admin_exists", service.ErrAdminEmailExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateAdmin -> h.svc.Signup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login an admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken() -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleGetMe godoc
// @Summary      Get the authenticated admin
// @Tags         admin
// @Produce      json
// @Success      200      {object}   domain.AdminUser
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Router       /admin/me [get]
// @Security BearerAuth
func (h *AuthHandler) HandleGetMe(ctx *gin.Context) {
	adminID := ctx.GetUint(middleware.AdminIDKey)

	user, err := h.svc.GetAdmin(ctx.Request.Context(), adminID)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("admin", "id", adminID))
			return
		}

		err = fmt.Errorf("v1.HandleGetMe -> h.svc.GetAdmin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

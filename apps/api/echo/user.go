package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/user"
)

type userApi struct {
	svc      *user.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, svc *user.Service, conf *core.Config, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		conf:     conf,
		validate: validate,
	}

	// un-authed endpoints
	g.POST("/users/login", api.login)
	g.GET("/teachers", api.queryTeachers)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return core.NewValidationError(user.ErrInvalidCredentials)
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetSessionClaims(sess, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: sess})
}

func (api *userApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.Teachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []user.User{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  user.Session `json:"user"`
}

package echoapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/thesis"
)

type thesisApi struct {
	svc      *thesis.Service
	validate *validator.Validate
}

func registerThesisAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *thesis.Service, validate *validator.Validate) {
	api := thesisApi{
		svc:      svc,
		validate: validate,
	}

	rg := g.Group("/requests")

	// un-authed endpoints
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)

	// authed endpoints
	rg.POST("", api.create, jwt)
	rg.PATCH("/:id/approve", api.approve, jwt)
	rg.PATCH("/:id/deny", api.deny, jwt)
	rg.POST("/:id/comments", api.addComment, jwt)

	g.GET("/theses", api.queryTheses)
}

// Handlers

func (api *thesisApi) create(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data thesis.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.svc.Propose(ctx.Request().Context(), sess, data)
	if err != nil {
		return errors.Wrap(err, "proposing request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *thesisApi) query(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	if rawID := ctx.QueryParam("teacherId"); rawID != "" {
		teacherID, err := strconv.Atoi(rawID)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "teacherId", Error: "must be an integer"})
		}
		reqs, err := api.svc.ForTeacher(rctx, teacherID)
		if err != nil {
			return errors.Wrap(err, "querying requests by teacher")
		}
		return ctx.JSON(http.StatusOK, emptyIfNil(reqs))
	}

	if student := ctx.QueryParam("student"); student != "" {
		reqs, err := api.svc.ForStudent(rctx, student)
		if err != nil {
			return errors.Wrap(err, "querying requests by student")
		}
		return ctx.JSON(http.StatusOK, emptyIfNil(reqs))
	}

	reqs, err := api.svc.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(reqs))
}

func (api *thesisApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	req, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding request by ID")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *thesisApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve)
}

func (api *thesisApi) deny(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Deny)
}

func (api *thesisApi) decide(ctx echo.Context, fn func(ctx context.Context, id, teacherID int) (thesis.Request, error)) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	req, err := fn(ctx.Request().Context(), id, sess.ID)
	if err != nil {
		return errors.Wrap(err, "deciding request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *thesisApi) addComment(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data thesis.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.svc.AddComment(ctx.Request().Context(), id, sess.Name, data)
	if err != nil {
		return errors.Wrap(err, "adding comment")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *thesisApi) queryTheses(ctx echo.Context) error {
	theses, err := api.svc.Theses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying theses")
	}
	if theses == nil {
		theses = []thesis.Thesis{}
	}
	return ctx.JSON(http.StatusOK, theses)
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

func emptyIfNil(reqs []thesis.Request) []thesis.Request {
	if reqs == nil {
		return []thesis.Request{}
	}
	return reqs
}

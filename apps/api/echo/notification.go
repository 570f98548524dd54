package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.PATCH("/:id/read", api.markRead)
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	notifs, err := api.svc.ForUser(ctx.Request().Context(), sess.ID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	if _, err := getContextSession(ctx); err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	notif, err := api.svc.MarkRead(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, notif)
}

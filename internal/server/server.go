package server

import (
	"log/slog"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
)

func Start(cfg config.Config, log *slog.Logger, orderH *handler.OrderHandler, paymentH *handler.PaymentHandler) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLogger(log))

	orderH.RegisterRoutes(e, cfg)
	paymentH.RegisterRoutes(e, cfg)

	return e.Start(":" + cfg.Port)
}

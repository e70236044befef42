package http

import "github.com/labstack/echo/v4"

// Handler mounts a group of routes on the server. NewServer registers
// /healthz and the metrics path itself.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

package router // package router defines how HTTP routes are registered for the till

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinepos/internal/handler"
)

// RegisterRoutes registers the liveness endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers room, film and seat map routes.  refreshLimit
// guards the catalog refresh, which may call an external film source.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, refreshLimit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/rooms", h.ListRooms)
	g.GET("/films", h.ListFilms)
	g.GET("/films/:id", h.GetFilm)
	if refreshLimit != nil {
		g.POST("/films/refresh", h.RefreshFilms, refreshLimit)
	} else {
		g.POST("/films/refresh", h.RefreshFilms)
	}
	g.GET("/rooms/:room/films/:film/seats", h.SeatMap)
}

// RegisterTill registers the sale flow and the end-of-day admin routes.
func RegisterTill(e *echo.Echo, h *handler.TillHandler) {
	g := e.Group("/v1")
	g.POST("/admission", h.CheckAdmission)
	g.POST("/quote", h.Quote)
	g.POST("/sales", h.ConfirmSale)
	g.GET("/sales/:folio", h.GetReceipt)
	g.GET("/sales/:folio/ticket", h.GetTicket)

	admin := e.Group("/v1/admin")
	admin.GET("/summary", h.Summary)
	admin.POST("/reset", h.ResetDay)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
)

// OccupancyReader is the read side of the occupancy store.
type OccupancyReader interface {
	Occupied(roomKey model.RoomKey, filmID string) []string
	Available(roomKey model.RoomKey, filmID string) int
}

// CatalogHandler serves rooms, films and seat maps.
type CatalogHandler struct {
	Catalog   *catalog.Catalog
	Occupancy OccupancyReader
	Logger    *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler.  cat and occ must be non-nil.
func NewCatalogHandler(cat *catalog.Catalog, occ OccupancyReader, logger *zap.Logger) *CatalogHandler {
	if cat == nil || occ == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{Catalog: cat, Occupancy: occ, Logger: logger}
}

// ListRooms handles GET /v1/rooms and doubles as the price list.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": catalog.Rooms()})
}

// ListFilms handles GET /v1/films.  The optional rating query parameter
// filters by class; an AA filter over a live list without AA titles
// returns the built-in AA films.
func (h *CatalogHandler) ListFilms(c echo.Context) error {
	films := h.Catalog.Films()
	if r := c.QueryParam("rating"); r != "" {
		rating := model.Rating(r)
		if !rating.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating"})
		}
		films = h.Catalog.FilmsByRating(rating)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": films, "live": h.Catalog.Live()})
}

// GetFilm handles GET /v1/films/:id.  Live films get their running time
// filled in on first view.
func (h *CatalogHandler) GetFilm(c echo.Context) error {
	f, err := h.Catalog.FilmDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownFilm) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog error"})
	}
	return c.JSON(http.StatusOK, f)
}

// RefreshFilms handles POST /v1/films/refresh.  A source failure still
// answers 200 with the built-in list and live=false.
func (h *CatalogHandler) RefreshFilms(c echo.Context) error {
	resp := echo.Map{}
	if err := h.Catalog.Reload(c.Request().Context()); err != nil {
		resp["warning"] = "film source unavailable, using built-in catalog"
	}
	resp["live"] = h.Catalog.Live()
	resp["count"] = len(h.Catalog.Films())
	return c.JSON(http.StatusOK, resp)
}

// SeatView is one seat in a seat map.
type SeatView struct {
	ID       string `json:"id"`
	Occupied bool   `json:"occupied"`
}

// SeatRow is one lettered row of a seat map.
type SeatRow struct {
	Label string     `json:"label"`
	Seats []SeatView `json:"seats"`
}

// SeatMap handles GET /v1/rooms/:room/films/:film/seats.
func (h *CatalogHandler) SeatMap(c echo.Context) error {
	room, err := catalog.Room(model.RoomKey(c.Param("room")))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	filmID := c.Param("film")
	if _, err := h.Catalog.Film(filmID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
	}

	taken := map[string]bool{}
	for _, s := range h.Occupancy.Occupied(room.Key, filmID) {
		taken[s] = true
	}
	rows := make([]SeatRow, 0, room.Rows)
	for r := 0; r < room.Rows; r++ {
		row := SeatRow{Label: catalog.RowLabel(r), Seats: make([]SeatView, 0, room.Cols)}
		for col := 1; col <= room.Cols; col++ {
			id := catalog.SeatID(r, col)
			row.Seats = append(row.Seats, SeatView{ID: id, Occupied: taken[id]})
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":      room,
		"film_id":   filmID,
		"rows":      rows,
		"capacity":  room.Capacity(),
		"available": h.Occupancy.Available(room.Key, filmID),
	})
}

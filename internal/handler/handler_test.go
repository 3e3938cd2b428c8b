package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
	"github.com/iliyamo/cinepos/internal/repository"
	"github.com/iliyamo/cinepos/internal/service"
)

type testTill struct {
	e      *echo.Echo
	occ    *repository.OccupancyRepo
	ledger *repository.LedgerRepo
}

func newTestTill(t *testing.T) *testTill {
	t.Helper()
	cat := catalog.New(catalog.Options{})
	require.NoError(t, cat.Refresh(context.Background()))

	occ := repository.NewOccupancyRepo()
	ledger := repository.NewLedgerRepo(occ)
	sales := service.NewSaleService(occ, ledger, nil, nil)

	ch := NewCatalogHandler(cat, occ, nil)
	th := NewTillHandler(cat, sales, ledger, nil)
	th.Now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	e := echo.New()
	e.GET("/healthz", Health)
	e.GET("/v1/rooms", ch.ListRooms)
	e.GET("/v1/films", ch.ListFilms)
	e.GET("/v1/films/:id", ch.GetFilm)
	e.POST("/v1/films/refresh", ch.RefreshFilms)
	e.GET("/v1/rooms/:room/films/:film/seats", ch.SeatMap)
	e.POST("/v1/admission", th.CheckAdmission)
	e.POST("/v1/quote", th.Quote)
	e.POST("/v1/sales", th.ConfirmSale)
	e.GET("/v1/sales/:folio", th.GetReceipt)
	e.GET("/v1/sales/:folio/ticket", th.GetTicket)
	e.GET("/v1/admin/summary", th.Summary)
	e.POST("/v1/admin/reset", th.ResetDay)
	return &testTill{e: e, occ: occ, ledger: ledger}
}

func (tt *testTill) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(b)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	tt.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sale(film, room string, seats []string, birth string, payment int64) map[string]any {
	return map[string]any{
		"film_id":       film,
		"room":          room,
		"tickets":       len(seats),
		"seats":         seats,
		"birth_date":    birth,
		"payment_cents": payment,
	}
}

func TestHealth(t *testing.T) {
	rec := newTestTill(t).do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListRoomsAndFilms(t *testing.T) {
	tt := newTestTill(t)

	rec := tt.do(t, http.MethodGet, "/v1/rooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 3)

	rec = tt.do(t, http.MethodGet, "/v1/films", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["items"], 9)
	assert.Equal(t, false, body["live"])

	rec = tt.do(t, http.MethodGet, "/v1/films?rating=B15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 3)

	rec = tt.do(t, http.MethodGet, "/v1/films?rating=X", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tt.do(t, http.MethodGet, "/v1/films/c3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bajo Cero", decode(t, rec)["title"])

	rec = tt.do(t, http.MethodGet, "/v1/films/zzz", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tt.do(t, http.MethodPost, "/v1/films/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(9), decode(t, rec)["count"])
}

func TestCheckAdmission(t *testing.T) {
	tt := newTestTill(t)

	rec := tt.do(t, http.MethodPost, "/v1/admission", map[string]any{"birth_date": "2010-06-16", "film_id": "b151"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(14), body["age"])
	assert.Equal(t, false, body["admitted"])

	rec = tt.do(t, http.MethodPost, "/v1/admission", map[string]any{"birth_date": "2007-06-15", "rating": "C"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["admitted"])

	rec = tt.do(t, http.MethodPost, "/v1/admission", map[string]any{"birth_date": "", "rating": "AA"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = tt.do(t, http.MethodPost, "/v1/admission", map[string]any{"birth_date": "2000-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuote(t *testing.T) {
	tt := newTestTill(t)

	rec := tt.do(t, http.MethodPost, "/v1/quote", map[string]any{"room": "infantil", "tickets": 3, "payment_cents": 7000})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(6150), body["subtotal_cents"])
	assert.Equal(t, float64(6200), body["total_cents"])
	assert.Equal(t, float64(800), body["change_cents"])
	assert.Equal(t, true, body["sufficient"])
	assert.Len(t, body["change"], 3)

	rec = tt.do(t, http.MethodPost, "/v1/quote", map[string]any{"room": "infantil", "tickets": 21})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tt.do(t, http.MethodPost, "/v1/quote", map[string]any{"room": "imax", "tickets": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmSaleFlow(t *testing.T) {
	tt := newTestTill(t)

	rec := tt.do(t, http.MethodPost, "/v1/sales", sale("c1", "estandar", []string{"C7", "C8"}, "1990-01-01", 10000))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt model.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, int64(9000), receipt.TotalCents)
	assert.Equal(t, []model.ChangeItem{{Denomination: 10, Count: 1}}, receipt.Change)
	assert.Len(t, receipt.Folio, 8)

	// seat map shows the sold seats
	rec = tt.do(t, http.MethodGet, "/v1/rooms/estandar/films/c1/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(58), body["available"])
	rows := body["rows"].([]any)
	require.Len(t, rows, 6)
	rowC := rows[2].(map[string]any)
	assert.Equal(t, "C", rowC["label"])
	seat7 := rowC["seats"].([]any)[6].(map[string]any)
	assert.Equal(t, "C7", seat7["id"])
	assert.Equal(t, true, seat7["occupied"])

	// an exact re-click is a duplicate
	rec = tt.do(t, http.MethodPost, "/v1/sales", sale("c1", "estandar", []string{"C8", "C7"}, "1990-01-01", 10000))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_submission", decode(t, rec)["error"])

	// an overlapping sale hits the occupied seat
	rec = tt.do(t, http.MethodPost, "/v1/sales", sale("c1", "estandar", []string{"C9", "C8"}, "1990-01-01", 10000))
	assert.Equal(t, http.StatusConflict, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "seat_conflict", body["error"])
	assert.Equal(t, "C8", body["seat"])
	assert.Equal(t, "Asiento C8 ya está ocupado.", body["message"])
	assert.False(t, tt.occ.IsOccupied(model.RoomStandard, "c1", "C9"))

	// receipt and ticket by folio
	rec = tt.do(t, http.MethodGet, "/v1/sales/"+receipt.Folio, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, receipt.Folio, decode(t, rec)["folio"])

	rec = tt.do(t, http.MethodGet, "/v1/sales/"+receipt.Folio+"/ticket", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FOLIO : "+receipt.Folio)
	assert.Contains(t, rec.Body.String(), "ASIENTOS : C7, C8")

	rec = tt.do(t, http.MethodGet, "/v1/sales/NOPE1234", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// summary lists every catalog film
	rec = tt.do(t, http.MethodGet, "/v1/admin/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(1), body["sales_count"])
	assert.Equal(t, float64(2), body["total_tickets"])
	assert.Equal(t, float64(9000), body["total_revenue_cents"])
	films := body["films"].([]any)
	require.Len(t, films, 9)
	for _, f := range films {
		row := f.(map[string]any)
		want := float64(0)
		if row["film_id"] == "c1" {
			want = 2
		}
		assert.Equal(t, want, row["tickets"], row["film_id"])
	}

	// end of day
	rec = tt.do(t, http.MethodPost, "/v1/admin/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, tt.ledger.Summary().SalesCount)
	assert.Empty(t, tt.occ.Occupied(model.RoomStandard, "c1"))
}

func TestConfirmSaleRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"no film", sale("", "estandar", []string{"A1"}, "1990-01-01", 5000), http.StatusUnprocessableEntity, "missing_selection"},
		{"unknown film", sale("zzz", "estandar", []string{"A1"}, "1990-01-01", 5000), http.StatusNotFound, ""},
		{"no birth date", sale("c1", "estandar", []string{"A1"}, "", 5000), http.StatusUnprocessableEntity, "unknown_age"},
		{"garbled birth date", sale("c1", "estandar", []string{"A1"}, "yesterday", 5000), http.StatusUnprocessableEntity, "unknown_age"},
		{"future birth date", sale("aa1", "infantil", []string{"A1"}, "2030-01-01", 5000), http.StatusUnprocessableEntity, "implausible_age"},
		{"too young", sale("c1", "estandar", []string{"A1"}, "2010-01-01", 5000), http.StatusForbidden, "admission_denied"},
		{"underpaid", sale("c1", "estandar", []string{"A1"}, "1990-01-01", 4499), http.StatusPaymentRequired, "insufficient_payment"},
		{"unknown room", sale("c1", "imax", []string{"A1"}, "1990-01-01", 5000), http.StatusNotFound, "unknown_room"},
		{"seat outside room", sale("aa1", "infantil", []string{"F1"}, "1990-01-01", 5000), http.StatusBadRequest, "invalid_seats"},
		{"zero tickets", sale("c1", "estandar", []string{}, "1990-01-01", 5000), http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTill(t)
			rec := tt.do(t, http.MethodPost, "/v1/sales", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.code != "" {
				body := decode(t, rec)
				assert.Equal(t, tc.code, body["error"])
				assert.NotEmpty(t, body["message"])
			}
			assert.Zero(t, tt.ledger.Summary().SalesCount)
		})
	}
}

func TestConfirmSaleSeatCountMismatch(t *testing.T) {
	tt := newTestTill(t)
	body := sale("c1", "estandar", []string{"A1"}, "1990-01-01", 10000)
	body["tickets"] = 2

	rec := tt.do(t, http.MethodPost, "/v1/sales", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "seat_count_mismatch", resp["error"])
	assert.Equal(t, "Selecciona exactamente 2 asiento(s).", resp["message"])
	assert.Equal(t, "validating", resp["stage"])
}

func TestRenderTicket(t *testing.T) {
	rc := &model.Receipt{
		Folio:         "AB12CD34",
		Film:          model.Film{ID: "aa1", Title: "Exploradores del Bosque", Rating: model.RatingAA},
		RoomKey:       model.RoomChild,
		RoomName:      "Sala Infantil",
		Tickets:       3,
		Seats:         []string{"A1", "A2", "A3"},
		SubtotalCents: 6150,
		TotalCents:    6200,
		PaymentCents:  7000,
		ChangeCents:   800,
		Change:        []model.ChangeItem{{Denomination: 5, Count: 1}, {Denomination: 2, Count: 1}, {Denomination: 1, Count: 1}},
		IssuedAt:      time.Date(2025, 6, 15, 18, 30, 5, 0, time.UTC),
	}
	want := strings.Join([]string{
		" CINEPOS — CINE CURIO",
		strings.Repeat("═", 40),
		"PELÍCULA : Exploradores del Bosque",
		"CLASIF. : AA",
		"SALA : Sala Infantil",
		"ASIENTOS : A1, A2, A3",
		"BOLETOS : 3",
		strings.Repeat("─", 40),
		"SUBTOTAL : $61.50",
		"TOTAL (↑) : $62",
		"PAGO : $70",
		"CAMBIO : $8",
		strings.Repeat("─", 40),
		"DESGLOSE CAMBIO:",
		" $5 × 1",
		" $2 × 1",
		" $1 × 1",
		strings.Repeat("─", 40),
		"FECHA/HORA : 15/06/2025 18:30:05",
		"FOLIO : AB12CD34",
		strings.Repeat("═", 40),
		"GRACIAS POR SU COMPRA — DISFRUTE LA FUNCIÓN",
		"",
	}, "\n")
	assert.Equal(t, want, RenderTicket(rc))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "$20.50", money(2050))
	assert.Equal(t, "-$1.05", money(-105))
}

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"hotel_booking/internal/adapters/hotelsapi"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/sqlstore"
	"hotel_booking/migrations"
)

// ---------- helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func fields(name, location string, price float64) domain.HotelFields {
	return domain.HotelFields{Name: pstr(name), Location: pstr(location), Price: pfloat(price)}
}

func names(hs []domain.Hotel) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Name)
	}
	sort.Strings(out)
	return out
}

func newStack(t *testing.T, typed bool) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.SQLite, ":memory:", sqlstore.PoolConfig{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Apply(ctx, db, "sqlite"); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	svc := app.NewHotelService(sqlstore.New(db, sqlstore.SQLite), nil, domain.DefaultQueryParams(), 5*time.Second)
	srv := server.New(server.Options{})
	srv.MountHandlers(&server.Handlers{Svc: svc, Typed: typed})

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

// startAPI wires the real stack over an in-memory SQLite database.
func startAPI(t *testing.T, typed bool) *hotelsapi.Client {
	t.Helper()
	ts := newStack(t, typed)
	cl, err := hotelsapi.New(ts.URL, 1000)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return cl
}

// ---------- the tests ----------
func TestHTTP_EndToEnd_AddListDelete(t *testing.T) {
	cl := startAPI(t, false)
	ctx := context.Background()

	h, err := cl.AddHotel(ctx, fields("Grand", "Paris", 120))
	if err != nil {
		t.Fatalf("AddHotel: %v", err)
	}
	if h != (domain.Hotel{ID: 1, Name: "Grand", Location: "Paris", Price: 120}) {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	list, err := cl.ListHotels(ctx)
	if err != nil || len(list) != 1 || list[0] != h {
		t.Fatalf("ListHotels = %+v, %v", list, err)
	}

	if err := cl.DeleteHotel(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHotel: %v", err)
	}
	if err := cl.DeleteHotel(ctx, h.ID); err != nil {
		t.Fatalf("second DeleteHotel should be a no-op: %v", err)
	}

	list, err = cl.ListHotels(ctx)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-null list, got %#v, %v", list, err)
	}
}

func TestHTTP_EndToEnd_Queries(t *testing.T) {
	cl := startAPI(t, false)
	ctx := context.Background()

	avg, err := cl.AveragePrice(ctx)
	if err != nil || avg.AveragePrice != nil {
		t.Fatalf("average of nothing = %+v, %v", avg, err)
	}

	ids := map[string]int64{}
	for _, f := range []domain.HotelFields{
		fields("Harbor Inn", "Location1", 80),
		fields("Grand Location", "Location1", 140),
		fields("Hilltop", "Location2", 60),
		fields("Rome Central", "Rome", 100),
		fields("Paris Grand", "Paris", 120),
	} {
		h, err := cl.AddHotel(ctx, f)
		if err != nil {
			t.Fatalf("AddHotel: %v", err)
		}
		ids[h.Name] = h.ID
	}

	avg, err = cl.AveragePrice(ctx)
	if err != nil || avg.AveragePrice == nil || *avg.AveragePrice != 100 {
		t.Fatalf("average = %+v, %v", avg, err)
	}

	search, err := cl.SearchByName(ctx, "GRAND")
	if err != nil || fmt.Sprint(names(search)) != "[Grand Location Paris Grand]" {
		t.Fatalf("search = %v, %v", names(search), err)
	}

	union, err := cl.UnionByLocation(ctx)
	if err != nil || fmt.Sprint(names(union)) != "[Grand Location Harbor Inn Hilltop]" {
		t.Fatalf("union = %v, %v", names(union), err)
	}

	inter, err := cl.IntersectLocationPrice(ctx)
	if err != nil || fmt.Sprint(names(inter)) != "[Harbor Inn]" {
		t.Fatalf("intersect = %v, %v", names(inter), err)
	}

	book := func(name string, n int) {
		for i := 0; i < n; i++ {
			b := domain.Booking{HotelID: ids[name], GuestName: fmt.Sprintf("g%d", i), CheckIn: "2024-06-01", CheckOut: "2024-06-02"}
			if err := cl.BookHotel(ctx, b); err != nil {
				t.Fatalf("BookHotel(%s): %v", name, err)
			}
		}
	}
	book("Paris Grand", 11)
	book("Rome Central", 10)
	book("Hilltop", 2)

	popular, err := cl.PopularLocations(ctx)
	if err != nil || len(popular) != 1 || popular[0].Location != "Paris" {
		t.Fatalf("popular = %+v, %v", popular, err)
	}

	frequent, err := cl.FrequentHotels(ctx)
	if err != nil || fmt.Sprint(names(frequent)) != "[Paris Grand Rome Central]" {
		t.Fatalf("frequent = %v, %v", names(frequent), err)
	}
}

func TestHTTP_EndToEnd_ErrorModes(t *testing.T) {
	ctx := context.Background()
	booking := domain.Booking{HotelID: 404, GuestName: "x", CheckIn: "2024-06-01", CheckOut: "2024-06-02"}

	compat := startAPI(t, false)
	if err := compat.BookHotel(ctx, booking); hotelsapi.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("compat unknown hotel: %v", err)
	}
	if _, err := compat.AddHotel(ctx, domain.HotelFields{Name: pstr("no price")}); hotelsapi.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("compat missing field: %v", err)
	}

	typed := startAPI(t, true)
	if err := typed.BookHotel(ctx, booking); hotelsapi.StatusOf(err) != http.StatusConflict {
		t.Fatalf("typed unknown hotel: %v", err)
	}
	if _, err := typed.AddHotel(ctx, domain.HotelFields{Name: pstr("no price")}); hotelsapi.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("typed missing field: %v", err)
	}
	upd, err := typed.UpdateHotel(ctx, 999, fields("x", "y", 1))
	if err != nil || upd != nil {
		t.Fatalf("typed update absent = %+v, %v", upd, err)
	}
}

// The web client posts form values as strings.
func TestHTTP_EndToEnd_WebClientPayloads(t *testing.T) {
	ts := newStack(t, false)

	post := func(path, body string) *http.Response {
		t.Helper()
		res, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		t.Cleanup(func() { _ = res.Body.Close() })
		return res
	}

	res := post("/api/hotels", `{"name":"Grand","location":"Paris","price":"120"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add: status %d", res.StatusCode)
	}
	var h domain.Hotel
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h != (domain.Hotel{ID: 1, Name: "Grand", Location: "Paris", Price: 120}) {
		t.Fatalf("created %+v", h)
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/hotels/1", strings.NewReader(`{"name":"Grand","location":"Paris","price":"135.5"}`))
	req.Header.Set("Content-Type", "application/json")
	upd, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer upd.Body.Close()
	if upd.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", upd.StatusCode)
	}
	if err := json.NewDecoder(upd.Body).Decode(&h); err != nil || h.Price != 135.5 {
		t.Fatalf("updated %+v, %v", h, err)
	}

	res = post("/api/hotels/book", `{"hotel_id":"1","guest_name":"Ana","check_in":"2024-06-01","check_out":"2024-06-03"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("book: status %d", res.StatusCode)
	}
}

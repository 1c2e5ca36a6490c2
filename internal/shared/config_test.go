package shared_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hotel_booking/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PORT", "DB_DRIVER", "ERROR_MODE", "UNION_LOCATIONS", "INTERSECT_MAX_PRICE", "POPULAR_MIN_BOOKINGS"} {
		t.Setenv(k, "")
	}
	c := shared.Load()

	if c.HTTPAddr != ":8080" || c.DBDriver != "postgres" || c.ErrorMode != shared.ErrorModeCompat {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.Query.UnionLocations) != 2 || c.Query.UnionLocations[0] != "Location1" || c.Query.UnionLocations[1] != "Location2" {
		t.Fatalf("union locations = %v", c.Query.UnionLocations)
	}
	if c.Query.IntersectLocation != "Location1" || c.Query.IntersectMaxPrice != 100 || c.Query.PopularMinBookings != 10 {
		t.Fatalf("query params = %+v", c.Query)
	}
	if c.QueryTimeout != 10*time.Second || c.RequestTimeout != 15*time.Second {
		t.Fatalf("timeouts = %v %v", c.QueryTimeout, c.RequestTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "3001")
	t.Setenv("UNION_LOCATIONS", " Paris, ,Rome ")
	t.Setenv("INTERSECT_MAX_PRICE", "75.5")
	t.Setenv("POPULAR_MIN_BOOKINGS", "not-a-number")
	t.Setenv("ERROR_MODE", "TYPED")
	t.Setenv("QUERY_TIMEOUT_SECONDS", "2")

	c := shared.Load()
	if c.HTTPAddr != ":3001" {
		t.Fatalf("PORT not honored: %q", c.HTTPAddr)
	}
	if len(c.Query.UnionLocations) != 2 || c.Query.UnionLocations[0] != "Paris" || c.Query.UnionLocations[1] != "Rome" {
		t.Fatalf("union = %#v", c.Query.UnionLocations)
	}
	if c.Query.IntersectMaxPrice != 75.5 {
		t.Fatalf("max price = %v", c.Query.IntersectMaxPrice)
	}
	if c.Query.PopularMinBookings != 10 {
		t.Fatalf("bad integer should fall back to default, got %d", c.Query.PopularMinBookings)
	}
	if c.ErrorMode != shared.ErrorModeTyped {
		t.Fatalf("error mode = %q", c.ErrorMode)
	}
	if c.QueryTimeout != 2*time.Second {
		t.Fatalf("query timeout = %v", c.QueryTimeout)
	}
}

func TestLoad_UnknownErrorModeFallsBack(t *testing.T) {
	t.Setenv("ERROR_MODE", "verbose")
	if c := shared.Load(); c.ErrorMode != shared.ErrorModeCompat {
		t.Fatalf("error mode = %q", c.ErrorMode)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BOOKING_QUEUE=from-dotenv\nINTERSECT_LOCATION=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// real environment wins over .env
	t.Setenv("INTERSECT_LOCATION", "from-env")
	t.Setenv("BOOKING_QUEUE", "") // registers restore on cleanup
	_ = os.Unsetenv("BOOKING_QUEUE")

	c := shared.Load()
	if c.BookingQueue != "from-dotenv" {
		t.Fatalf("booking queue = %q", c.BookingQueue)
	}
	if c.Query.IntersectLocation != "from-env" {
		t.Fatalf("intersect location = %q", c.Query.IntersectLocation)
	}
}

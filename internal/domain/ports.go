package domain

import "context"

type HotelStore interface {
	// Write paths
	AddHotel(ctx context.Context, f HotelFields) (Hotel, error)
	// UpdateHotel returns nil when no hotel has the given id.
	UpdateHotel(ctx context.Context, id int64, f HotelFields) (*Hotel, error)
	DeleteHotel(ctx context.Context, id int64) error
	BookHotel(ctx context.Context, b Booking) error

	// Read paths
	ListHotels(ctx context.Context) ([]Hotel, error)
	AveragePrice(ctx context.Context) (AveragePrice, error)
	SearchByName(ctx context.Context, substring string) ([]Hotel, error)
	UnionByLocation(ctx context.Context, locations []string) ([]Hotel, error)
	IntersectLocationPrice(ctx context.Context, location string, maxPrice float64) ([]Hotel, error)
	PopularLocations(ctx context.Context, minBookings int) ([]Hotel, error)
	FrequentHotels(ctx context.Context) ([]Hotel, error)

	Ping(ctx context.Context) error
}

type BookingNotifier interface {
	BookingCreated(ctx context.Context, b Booking) error
}

// Query parameters that used to be literals in the SQL text.
type QueryParams struct {
	UnionLocations     []string
	IntersectLocation  string
	IntersectMaxPrice  float64
	PopularMinBookings int
}

// DefaultQueryParams mirrors the literals of the legacy queries.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		UnionLocations:     []string{"Location1", "Location2"},
		IntersectLocation:  "Location1",
		IntersectMaxPrice:  100,
		PopularMinBookings: 10,
	}
}

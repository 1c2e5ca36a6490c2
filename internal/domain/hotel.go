package domain

import (
	"encoding/json"
	"fmt"
)

type Hotel struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
}

// HotelFields is the writable part of a hotel. Nil fields are bound as NULL
// and left for the store's constraints to accept or reject.
type HotelFields struct {
	Name     *string  `json:"name"`
	Location *string  `json:"location"`
	Price    *float64 `json:"price"`
}

// UnmarshalJSON accepts price as a JSON number or a numeric string; the web
// client posts form input values as strings.
func (f *HotelFields) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name     *string      `json:"name"`
		Location *string      `json:"location"`
		Price    *json.Number `json:"price"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = HotelFields{Name: raw.Name, Location: raw.Location}
	if raw.Price != nil {
		p, err := raw.Price.Float64()
		if err != nil {
			return fmt.Errorf("price %q: %w", raw.Price.String(), err)
		}
		f.Price = &p
	}
	return nil
}

type Booking struct {
	HotelID   int64  `json:"hotel_id"`
	GuestName string `json:"guest_name"`
	CheckIn   string `json:"check_in"`  // YYYY-MM-DD, parsed by the store
	CheckOut  string `json:"check_out"` // YYYY-MM-DD
}

// UnmarshalJSON accepts hotel_id as a JSON number or a numeric string.
func (b *Booking) UnmarshalJSON(data []byte) error {
	var raw struct {
		HotelID   *json.Number `json:"hotel_id"`
		GuestName string       `json:"guest_name"`
		CheckIn   string       `json:"check_in"`
		CheckOut  string       `json:"check_out"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Booking{GuestName: raw.GuestName, CheckIn: raw.CheckIn, CheckOut: raw.CheckOut}
	if raw.HotelID != nil {
		id, err := raw.HotelID.Int64()
		if err != nil {
			return fmt.Errorf("hotel_id %q: %w", raw.HotelID.String(), err)
		}
		b.HotelID = id
	}
	return nil
}

type AveragePrice struct {
	AveragePrice *float64 `json:"average_price"` // nil when there are no hotels
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

var _ domain.HotelStore = (*Repo)(nil)

type Repo struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, d Dialect) *Repo { return &Repo{db: db, dialect: d} }

func (r *Repo) Dialect() Dialect { return r.dialect }

type scanner interface{ Scan(dest ...any) error }

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var name, location sql.NullString
	var price sql.NullFloat64
	if err := s.Scan(&h.ID, &name, &location, &price); err != nil {
		return domain.Hotel{}, err
	}
	h.Name = name.String
	h.Location = location.String
	h.Price = price.Float64
	return h, nil
}

// observe times one statement and converts its error into a StoreError.
func (r *Repo) observe(op string, start time.Time, err error) error {
	err = wrap(op, err)
	kind := ""
	if err != nil {
		kind = domain.KindLabel(domain.KindOf(err))
	}
	observability.ObserveQuery(op, kind, time.Since(start))
	return err
}

func (r *Repo) queryHotels(ctx context.Context, op string, st Statement) (out []domain.Hotel, err error) {
	start := time.Now()
	defer func() { err = r.observe(op, start, err) }()

	rows, err := r.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make([]domain.Hotel, 0)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, "ListHotels", r.dialect.ListHotels())
}

func (r *Repo) AddHotel(ctx context.Context, f domain.HotelFields) (h domain.Hotel, err error) {
	start := time.Now()
	defer func() { err = r.observe("AddHotel", start, err) }()

	st := r.dialect.AddHotel(f)
	if r.dialect.Returning {
		return scanHotel(r.db.QueryRowContext(ctx, st.SQL, st.Args...))
	}

	res, err := r.db.ExecContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return domain.Hotel{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Hotel{}, err
	}
	get := r.dialect.GetHotel(id)
	return scanHotel(r.db.QueryRowContext(ctx, get.SQL, get.Args...))
}

func (r *Repo) UpdateHotel(ctx context.Context, id int64, f domain.HotelFields) (_ *domain.Hotel, err error) {
	start := time.Now()
	defer func() { err = r.observe("UpdateHotel", start, err) }()

	st := r.dialect.UpdateHotel(id, f)
	var row *sql.Row
	if r.dialect.Returning {
		row = r.db.QueryRowContext(ctx, st.SQL, st.Args...)
	} else {
		// MySQL reports zero affected rows for a no-op update, so read back by id.
		if _, err := r.db.ExecContext(ctx, st.SQL, st.Args...); err != nil {
			return nil, err
		}
		get := r.dialect.GetHotel(id)
		row = r.db.QueryRowContext(ctx, get.SQL, get.Args...)
	}

	h, err := scanHotel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { err = r.observe("DeleteHotel", start, err) }()

	st := r.dialect.DeleteHotel(id)
	_, err = r.db.ExecContext(ctx, st.SQL, st.Args...)
	return err
}

func (r *Repo) AveragePrice(ctx context.Context) (out domain.AveragePrice, err error) {
	start := time.Now()
	defer func() { err = r.observe("AveragePrice", start, err) }()

	st := r.dialect.AveragePrice()
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&avg); err != nil {
		return domain.AveragePrice{}, err
	}
	if avg.Valid {
		v := avg.Float64
		out.AveragePrice = &v
	}
	return out, nil
}

func (r *Repo) SearchByName(ctx context.Context, substring string) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, "SearchByName", r.dialect.SearchByName(substring))
}

func (r *Repo) UnionByLocation(ctx context.Context, locations []string) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, "UnionByLocation", r.dialect.UnionByLocation(locations))
}

func (r *Repo) IntersectLocationPrice(ctx context.Context, location string, maxPrice float64) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, "IntersectLocationPrice", r.dialect.IntersectLocationPrice(location, maxPrice))
}

func (r *Repo) PopularLocations(ctx context.Context, minBookings int) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, "PopularLocations", r.dialect.PopularLocations(minBookings))
}

func (r *Repo) FrequentHotels(ctx context.Context) ([]domain.Hotel, error) {
	return r.queryHotels(ctx, "FrequentHotels", r.dialect.FrequentHotels())
}

func (r *Repo) BookHotel(ctx context.Context, b domain.Booking) (err error) {
	start := time.Now()
	defer func() { err = r.observe("BookHotel", start, err) }()

	st := r.dialect.BookHotel(b)
	_, err = r.db.ExecContext(ctx, st.SQL, st.Args...)
	return err
}

func (r *Repo) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { err = r.observe("Ping", start, err) }()
	return r.db.PingContext(ctx)
}

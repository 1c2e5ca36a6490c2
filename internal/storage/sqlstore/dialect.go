package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	"hotel_booking/internal/domain"
)

// Statement is one SQL text plus its bound arguments. User input only ever
// travels in Args.
type Statement struct {
	SQL  string
	Args []any
}

// Dialect captures the differences between the supported engines.
type Dialect struct {
	Name   string
	Driver string // database/sql driver name

	// Returning reports whether INSERT/UPDATE ... RETURNING is available.
	Returning bool

	numbered  bool   // $1, $2 ... instead of ?
	ciMatch   string // case-insensitive LIKE predicate on name, with one %s placeholder
	bookSQL   string
	bookViaSP bool
}

var (
	Postgres = Dialect{
		Name: "postgres", Driver: "pgx", Returning: true, numbered: true,
		ciMatch: "name ILIKE %s", bookSQL: callBookHotelSQL, bookViaSP: true,
	}
	MySQL = Dialect{
		Name: "mysql", Driver: "mysql",
		ciMatch: "LOWER(name) LIKE LOWER(%s)", bookSQL: callBookHotelSQL, bookViaSP: true,
	}
	SQLite = Dialect{
		Name: "sqlite", Driver: "sqlite", Returning: true,
		ciMatch: "LOWER(name) LIKE LOWER(%s)", bookSQL: insertBookingSQL,
	}
)

// DialectFor resolves a DB_DRIVER value.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported DB_DRIVER %q", name)
}

// UsesStoredProcedure reports whether bookings go through book_hotel.
func (d Dialect) UsesStoredProcedure() bool { return d.bookViaSP }

// placeholders returns n placeholders starting at position from (1-based).
func (d Dialect) placeholders(from, n int) []any {
	out := make([]any, n)
	for i := range out {
		if d.numbered {
			out[i] = "$" + strconv.Itoa(from+i)
		} else {
			out[i] = "?"
		}
	}
	return out
}

func (d Dialect) sprintf(format string, from, n int) string {
	return fmt.Sprintf(format, d.placeholders(from, n)...)
}

func (d Dialect) returning(sql string) string {
	if !d.Returning {
		return sql
	}
	return sql + " RETURNING " + hotelColumns
}

func (d Dialect) ListHotels() Statement { return Statement{SQL: listHotelsSQL} }

func (d Dialect) AddHotel(f domain.HotelFields) Statement {
	return Statement{
		SQL:  d.returning(d.sprintf(insertHotelSQL, 1, 3)),
		Args: []any{valStr(f.Name), valStr(f.Location), valF64(f.Price)},
	}
}

func (d Dialect) UpdateHotel(id int64, f domain.HotelFields) Statement {
	return Statement{
		SQL:  d.returning(d.sprintf(updateHotelSQL, 1, 4)),
		Args: []any{valStr(f.Name), valStr(f.Location), valF64(f.Price), id},
	}
}

func (d Dialect) GetHotel(id int64) Statement {
	return Statement{SQL: d.sprintf(getHotelSQL, 1, 1), Args: []any{id}}
}

func (d Dialect) DeleteHotel(id int64) Statement {
	return Statement{SQL: d.sprintf(deleteHotelSQL, 1, 1), Args: []any{id}}
}

func (d Dialect) AveragePrice() Statement { return Statement{SQL: averagePriceSQL} }

func (d Dialect) SearchByName(substring string) Statement {
	where := d.sprintf(d.ciMatch, 1, 1)
	return Statement{
		SQL:  listHotelsSQL + " WHERE " + where,
		Args: []any{"%" + substring + "%"},
	}
}

func (d Dialect) UnionByLocation(locations []string) Statement {
	if len(locations) == 0 {
		return Statement{SQL: emptyHotelsSQL}
	}
	branches := make([]string, len(locations))
	args := make([]any, len(locations))
	for i, loc := range locations {
		branches[i] = d.sprintf(unionBranchSQL, i+1, 1)
		args[i] = loc
	}
	return Statement{SQL: strings.Join(branches, "\nUNION\n"), Args: args}
}

func (d Dialect) IntersectLocationPrice(location string, maxPrice float64) Statement {
	return Statement{
		SQL:  d.sprintf(intersectSQL, 1, 2),
		Args: []any{location, maxPrice},
	}
}

func (d Dialect) PopularLocations(minBookings int) Statement {
	return Statement{
		SQL:  d.sprintf(popularLocationsSQL, 1, 1),
		Args: []any{minBookings},
	}
}

func (d Dialect) FrequentHotels() Statement { return Statement{SQL: frequentHotelsSQL} }

func (d Dialect) BookHotel(b domain.Booking) Statement {
	return Statement{
		SQL:  d.sprintf(d.bookSQL, 1, 4),
		Args: []any{b.HotelID, b.GuestName, b.CheckIn, b.CheckOut},
	}
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

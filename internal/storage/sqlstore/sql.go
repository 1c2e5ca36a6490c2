package sqlstore

// Every statement selects the hotel columns explicitly so scans stay stable
// if the table grows.
const hotelColumns = "id, name, location, price"

const listHotelsSQL = "SELECT " + hotelColumns + " FROM hotels"

// %s are dialect placeholders, never values.
const insertHotelSQL = "INSERT INTO hotels (name, location, price) VALUES (%s, %s, %s)"

const updateHotelSQL = "UPDATE hotels SET name = %s, location = %s, price = %s WHERE id = %s"

const getHotelSQL = "SELECT " + hotelColumns + " FROM hotels WHERE id = %s"

const deleteHotelSQL = "DELETE FROM hotels WHERE id = %s"

const averagePriceSQL = "SELECT AVG(price) AS average_price FROM hotels"

const unionBranchSQL = "SELECT " + hotelColumns + " FROM hotels WHERE location = %s"

// Used when no union locations are configured.
const emptyHotelsSQL = "SELECT " + hotelColumns + " FROM hotels WHERE 1 = 0"

const intersectSQL = `
SELECT ` + hotelColumns + ` FROM hotels WHERE location = %s
INTERSECT
SELECT ` + hotelColumns + ` FROM hotels WHERE price < %s
`

// Hotels whose location collected more than %s bookings across all hotels there.
const popularLocationsSQL = `
SELECT ` + hotelColumns + ` FROM hotels
WHERE location IN (
  SELECT h.location
  FROM bookings b
  JOIN hotels h ON b.hotel_id = h.id
  GROUP BY h.location
  HAVING COUNT(b.id) > %s
)
`

const frequentHotelsSQL = "SELECT " + hotelColumns + " FROM frequent_hotels"

const callBookHotelSQL = "CALL book_hotel(%s, %s, %s, %s)"

// SQLite has no stored procedures; the booking row is written directly.
const insertBookingSQL = "INSERT INTO bookings (hotel_id, guest_name, check_in, check_out) VALUES (%s, %s, %s, %s)"

package geo

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

const unknown = "Unknown"

type Location struct {
	Country   string
	City      string
	Latitude  *float64
	Longitude *float64
}

// Locator resolves an IP address to a best-effort location. Lookups
// never fail; missing data comes back as "Unknown".
type Locator interface {
	Lookup(ip string) Location
}

// MaxMindLocator reads a local MaxMind City database.
type MaxMindLocator struct {
	db *geoip2.Reader
}

func NewMaxMindLocator(path string) (*MaxMindLocator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MaxMindLocator{db: db}, nil
}

func (l *MaxMindLocator) Lookup(ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return unknownLocation()
	}
	record, err := l.db.City(parsed)
	if err != nil {
		return unknownLocation()
	}

	loc := unknownLocation()
	if record.Country.IsoCode != "" {
		loc.Country = record.Country.IsoCode
	}
	if city := record.City.Names["en"]; city != "" {
		loc.City = city
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		lat, lon := record.Location.Latitude, record.Location.Longitude
		loc.Latitude = &lat
		loc.Longitude = &lon
	}
	return loc
}

func (l *MaxMindLocator) Close() error {
	return l.db.Close()
}

// NoopLocator is used when no GeoIP database is configured.
type NoopLocator struct{}

func (NoopLocator) Lookup(string) Location {
	return unknownLocation()
}

func unknownLocation() Location {
	return Location{Country: unknown, City: unknown}
}

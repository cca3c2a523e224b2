// Package maps builds external map links for supermarket locations and
// hands them to the platform's URL handler.
package maps

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

// DefaultBaseURL is the public map search endpoint.
const DefaultBaseURL = "https://www.google.com/maps"

// Semarang is the initial map centre.
var Semarang = Point{Lat: -6.966667, Lng: 110.416664}

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat, Lng float64
}

// Of returns the location of a supermarket.
func Of(m domain.Supermarket) Point {
	return Point{Lat: m.Latitude, Lng: m.Longitude}
}

// Linker builds map URLs and opens them.
type Linker struct {
	base string
	open func(string) error
	copy func(string) error
	log  *logger.Logger
}

// Option configures the Linker.
type Option func(*Linker)

// WithBaseURL overrides the map endpoint.
func WithBaseURL(u string) Option {
	return func(l *Linker) {
		if u != "" {
			l.base = strings.TrimRight(u, "/")
		}
	}
}

// WithOpener replaces the platform URL handler.
func WithOpener(fn func(string) error) Option {
	return func(l *Linker) { l.open = fn }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(l *Linker) { l.copy = fn }
}

// NewLinker creates a Linker using the default browser and clipboard.
func NewLinker(log *logger.Logger, opts ...Option) *Linker {
	l := &Linker{
		base: DefaultBaseURL,
		open: browser.OpenURL,
		copy: clipboard.WriteAll,
		log:  log,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// URL returns {base}?q={lat},{lng}.
func (l *Linker) URL(p Point) string {
	q := url.Values{}
	q.Set("q", formatCoord(p.Lat)+","+formatCoord(p.Lng))
	// Keep the comma readable; map handlers accept it unescaped.
	return l.base + "?" + strings.ReplaceAll(q.Encode(), "%2C", ",")
}

// Open hands the location's URL to the platform. When no handler is
// available the URL is copied to the clipboard instead. The returned
// string says which happened.
func (l *Linker) Open(p Point) (string, error) {
	u := l.URL(p)
	if err := l.open(u); err != nil {
		l.log.Warn("maps: opening %s failed: %v", u, err)
		if cerr := l.copy(u); cerr != nil {
			return "", fmt.Errorf("opening map: %w", err)
		}
		return "Copied " + u + " to the clipboard", nil
	}
	l.log.Info("maps: opened %s", u)
	return "Opened " + u, nil
}

// Copy puts the location's URL on the clipboard.
func (l *Linker) Copy(p Point) (string, error) {
	u := l.URL(p)
	if err := l.copy(u); err != nil {
		return "", fmt.Errorf("copying map link: %w", err)
	}
	return "Copied " + u + " to the clipboard", nil
}

// Distance returns the great-circle distance between two points in
// kilometres.
func Distance(a, b Point) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

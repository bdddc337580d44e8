package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoResult    = errors.New("no geocoding result")
	ErrUpstream    = errors.New("geocoding provider unavailable")
	ErrInvalidArgs = errors.New("invalid geocoding arguments")
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Full        string       `json:"full"`
	Street      string       `json:"street"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	PostalCode  string       `json:"postalCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Geocoder converts between coordinates and postal addresses.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*Address, error)
	Forward(ctx context.Context, query string) (*Address, error)
}

// Client talks to a Nominatim compatible endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Country     string `json:"country"`
		Postcode    string `json:"postcode"`
	} `json:"address"`
}

func (p place) toAddress() *Address {
	a := p.Address
	street := a.Road
	if a.HouseNumber != "" {
		street = strings.TrimSpace(a.HouseNumber + " " + a.Road)
	}
	city := a.City
	if city == "" {
		city = a.Town
	}
	if city == "" {
		city = a.Village
	}
	return &Address{
		Full:       p.DisplayName,
		Street:     street,
		City:       city,
		State:      a.State,
		Country:    a.Country,
		PostalCode: a.Postcode,
	}
}

func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Address, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidArgs
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("zoom", "18")

	var p place
	if err := c.get(ctx, "/reverse", q, &p); err != nil {
		return nil, err
	}
	if p.DisplayName == "" {
		return nil, ErrNoResult
	}

	addr := p.toAddress()
	addr.Coordinates = &Coordinates{Lat: lat, Lng: lng}
	return addr, nil
}

func (c *Client) Forward(ctx context.Context, query string) (*Address, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidArgs
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")

	var results []place
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	addr := results[0].toAddress()
	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat == nil && errLng == nil {
		addr.Coordinates = &Coordinates{Lat: lat, Lng: lng}
	}
	return addr, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

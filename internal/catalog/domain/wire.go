package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Datasets are exported from spreadsheets, so scalar fields arrive loosely
// typed: ids as numbers, blank coordinate cells as "", flags as "TRUE".

// StoreID is a store identifier. Numeric ids are kept in their JSON text form.
type StoreID string

// UnmarshalJSON accepts a JSON string or number.
func (id *StoreID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StoreID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("store id: %w", err)
	}
	*id = StoreID(n.String())
	return nil
}

// Flag is a boolean that also accepts "true"/"false" strings, "" and null.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = false
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = true
		return nil
	case bytes.Equal(data, []byte("false")):
		*f = false
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag: unsupported value %s", data)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0":
		*f = false
	case "true", "1":
		*f = true
	default:
		return fmt.Errorf("flag: unsupported value %q", s)
	}
	return nil
}

type storeWire struct {
	ID           StoreID         `json:"id"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	Category     string          `json:"category"`
	Region       string          `json:"region"`
	OpeningHours string          `json:"openingHours"`
	Description  string          `json:"description"`
	Lat          json.RawMessage `json:"lat"`
	Lng          json.RawMessage `json:"lng"`
	Offers       []Offer         `json:"offers"`
}

// UnmarshalJSON decodes a store record, treating blank or null coordinates
// as absent.
func (s *Store) UnmarshalJSON(data []byte) error {
	var wire storeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	lat, err := parseCoordinate(wire.Lat)
	if err != nil {
		return fmt.Errorf("store %q lat: %w", wire.ID, err)
	}
	lng, err := parseCoordinate(wire.Lng)
	if err != nil {
		return fmt.Errorf("store %q lng: %w", wire.ID, err)
	}

	*s = Store{
		ID:           wire.ID,
		Name:         wire.Name,
		Address:      wire.Address,
		Phone:        wire.Phone,
		Category:     wire.Category,
		Region:       wire.Region,
		OpeningHours: wire.OpeningHours,
		Description:  wire.Description,
		Lat:          lat,
		Lng:          lng,
		Offers:       wire.Offers,
	}
	return nil
}

func parseCoordinate(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", s)
		}
		return &v, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid coordinate %s", raw)
	}
	return &v, nil
}

// DecodeStores decodes a JSON array of store records.
func DecodeStores(data []byte) ([]Store, error) {
	var stores []Store
	if err := json.Unmarshal(data, &stores); err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []Store{}
	}
	return stores, nil
}

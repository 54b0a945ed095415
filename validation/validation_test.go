package validation

import (
	"log/slog"
	"os"
	"testing"

	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

type searchParams struct {
	Latitude   string `form:"lat" validate:"required"`
	Longitude  string `form:"lon" validate:"required"`
	Level      string `form:"level" validate:"valid_level"`
	Ownership  string `form:"ownership_type" validate:"valid_ownership"`
	LocationID string `form:"location_id" validate:"valid_id"`
}

type statusParams struct {
	Status string `form:"status" validate:"valid_status"`
}

type reviewBody struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func TestValidate(t *testing.T) {
	validator, err := New(newTestLogger())
	require.NoError(t, err)

	valid := searchParams{Latitude: "18.09", Longitude: "-15.97"}

	tests := []struct {
		name        string
		input       any
		expectedErr string
	}{
		{name: "coordinates only", input: valid},
		{
			name:  "all filters",
			input: searchParams{Latitude: "18.09", Longitude: "-15.97", Level: "Superieur", Ownership: "privée", LocationID: "12"},
		},
		{name: "missing latitude", input: searchParams{Longitude: "-15.97"}, expectedErr: "missing required field 'lat'"},
		{name: "unknown level", input: searchParams{Latitude: "18", Longitude: "-15", Level: "doctorat"}, expectedErr: "level: unknown level"},
		{name: "unknown ownership", input: searchParams{Latitude: "18", Longitude: "-15", Ownership: "mixte"}, expectedErr: "ownership_type: unknown ownership type"},
		{name: "location id not a number", input: searchParams{Latitude: "18", Longitude: "-15", LocationID: "abc"}, expectedErr: "location_id: invalid id, expected a positive integer"},
		{name: "location id zero", input: searchParams{Latitude: "18", Longitude: "-15", LocationID: "0"}, expectedErr: "location_id: invalid id, expected a positive integer"},
		{name: "location id negative", input: searchParams{Latitude: "18", Longitude: "-15", LocationID: "-3"}, expectedErr: "location_id: invalid id, expected a positive integer"},
		{name: "known status", input: statusParams{Status: "approved"}},
		{name: "no status", input: statusParams{}},
		{name: "unknown status", input: statusParams{Status: "archived"}, expectedErr: "status: unknown approval status"},
		{name: "review", input: reviewBody{Rating: 5, Comment: "Très bien"}},
		{name: "review rating too high", input: reviewBody{Rating: 6, Comment: "?"}, expectedErr: "value or length of field 'rating' is not in the expected range"},
		{name: "review without comment", input: reviewBody{Rating: 3}, expectedErr: "missing required field 'comment'"},
		{name: "review bad email", input: reviewBody{Rating: 3, Comment: "ok", Email: "nope"}, expectedErr: "field 'email' must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.input)
			if tt.expectedErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.expectedErr)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input    string
		expected uint64
		wantErr  bool
	}{
		{input: "1", expected: 1},
		{input: " 42 ", expected: 42},
		{input: "0", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "+1", wantErr: true},
		{input: "1.5", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, err := ParseID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, id)
		})
	}
}

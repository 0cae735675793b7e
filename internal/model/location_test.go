package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDegrees(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{41.8781, "41.8781"},
		{-87.6298, "-87.6298"},
		{-87, "-87.0"},
		{0, "0.0"},
		{39.78172130000001, "39.78172130000001"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-0.00005, "-5e-05"},
		{1.5e-7, "1.5e-07"},
		{1e16, "1e+16"},
		{1234567890123456, "1234567890123456.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDegrees(tt.in))
	}
}

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "41.8781,-87.6298", FormatLocation(41.8781, -87.6298))
	assert.Equal(t, "30.0,-97.0", FormatLocation(30, -97))
	assert.Equal(t, "51.4779,-5e-05", FormatLocation(51.4779, -0.00005))
}

func TestDegrees_Marshal(t *testing.T) {
	text, err := NewDegrees(-87.6298).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "-87.6298", string(text))

	text, err = Degrees{}.MarshalText()
	require.NoError(t, err)
	assert.Empty(t, text)

	data, err := json.Marshal(struct {
		Lat Degrees
		Lon Degrees
	}{NewDegrees(41.8781), Degrees{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Lat": 41.8781, "Lon": ""}`, string(data))
}

func TestOutputRow_JSONFieldOrder(t *testing.T) {
	row := OutputRow{
		AddressRow: AddressRow{Region: "East", LocationCode: "L1", City: "Austin"},
		Latitude:   NewDegrees(30.2672),
		Longitude:  NewDegrees(-97.7431),
		Location:   "30.2672,-97.7431",
	}
	assert.True(t, row.Resolved())

	data, err := json.Marshal(row)
	require.NoError(t, err)

	s := string(data)
	assert.Regexp(t, `^\{"Region":"East","Location Code":"L1",`, s)
	assert.Regexp(t, `"MSA Name":"","Latitude":30.2672,"Longitude":-97.7431,"Location":"30.2672,-97.7431"\}$`, s)
}

func TestOutputRow_Unresolved(t *testing.T) {
	row := OutputRow{AddressRow: AddressRow{LocationCode: "L2"}}
	assert.False(t, row.Resolved())

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Latitude":"","Longitude":"","Location":""`)
}

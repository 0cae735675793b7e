package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatch struct {
	results Results
	err     error
	calls   int
	got     []AddressInput
}

func (f *fakeBatch) BatchGeocode(_ context.Context, addrs []AddressInput) (Results, error) {
	f.calls++
	f.got = addrs
	return f.results, f.err
}

type fakeSearcher struct {
	matches map[string]*Coordinates
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (*Coordinates, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[query], nil
}

func TestCandidateQueries(t *testing.T) {
	tests := []struct {
		name string
		addr AddressInput
		want []string
	}{
		{
			name: "full address",
			addr: AddressInput{Street: "123 Main St", City: "Springfield", State: "IL", ZipCode: "62701"},
			want: []string{"123 Main St, Springfield, IL, 62701", "Springfield, IL 62701", "Springfield, IL"},
		},
		{
			name: "no street",
			addr: AddressInput{City: "Springfield", State: "IL", ZipCode: "62701"},
			want: []string{"Springfield, IL 62701", "Springfield, IL"},
		},
		{
			name: "no street no zip",
			addr: AddressInput{City: "Springfield", State: "IL"},
			want: []string{"Springfield, IL"},
		},
		{
			name: "street without zip",
			addr: AddressInput{Street: "9 Elm St", City: "Dover", State: "DE"},
			want: []string{"9 Elm St, Dover, DE", "Dover, DE"},
		},
		{
			name: "city stands in for street",
			addr: AddressInput{Street: "Dover", City: "Dover", State: "DE", ZipCode: "19901"},
			want: []string{"Dover, Dover, DE, 19901", "Dover, DE 19901", "Dover, DE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateQueries(tt.addr))
		})
	}
}

func TestResolveBatch_FillsUnreturnedIDs(t *testing.T) {
	fb := &fakeBatch{results: Results{
		"ID1": {Latitude: 41.8781, Longitude: -87.6298},
		"ID9": {Latitude: 1, Longitude: 1},
	}}
	addrs := []AddressInput{{ID: "ID1"}, {ID: "ID2"}}

	results, err := ResolveBatch(context.Background(), fb, addrs)
	require.NoError(t, err)

	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, addrs, fb.got)
	assert.Len(t, results, 2)
	assert.True(t, results.Resolved("ID1"))
	v, ok := results["ID2"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestResolveBatch_EmptyInputSkipsService(t *testing.T) {
	fb := &fakeBatch{}
	results, err := ResolveBatch(context.Background(), fb, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, fb.calls)
}

func TestResolveBatch_ErrorPropagates(t *testing.T) {
	fb := &fakeBatch{err: errors.New("boom")}
	_, err := ResolveBatch(context.Background(), fb, []AddressInput{{ID: "ID1"}})
	assert.EqualError(t, err, "boom")
}

func TestResolveFallback_OnlyQueriesUnresolved(t *testing.T) {
	addrs := []AddressInput{
		{ID: "ID1", Street: "1 A St", City: "Austin", State: "TX", ZipCode: "78701"},
		{ID: "ID2", Street: "2 B St", City: "Dallas", State: "TX", ZipCode: "75201"},
	}
	prior := Results{"ID1": {Latitude: 30, Longitude: -97}, "ID2": nil}
	fs := &fakeSearcher{matches: map[string]*Coordinates{
		"2 B St, Dallas, TX, 75201": {Latitude: 32.7767, Longitude: -96.797},
	}}

	results, err := ResolveFallback(context.Background(), fs, addrs, prior)
	require.NoError(t, err)

	assert.Equal(t, []string{"2 B St, Dallas, TX, 75201"}, fs.queries)
	assert.Equal(t, prior["ID1"], results["ID1"])
	require.NotNil(t, results["ID2"])
	assert.Equal(t, 32.7767, results["ID2"].Latitude)
	assert.Nil(t, prior["ID2"], "prior results must not be modified")
}

func TestResolveFallback_StopsAtFirstMatch(t *testing.T) {
	addrs := []AddressInput{{ID: "ID1", Street: "123 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}}
	fs := &fakeSearcher{matches: map[string]*Coordinates{
		"Springfield, IL 62701": {Latitude: 39.78, Longitude: -89.65},
		"Springfield, IL":       {Latitude: 0, Longitude: 0},
	}}

	results, err := ResolveFallback(context.Background(), fs, addrs, Results{"ID1": nil})
	require.NoError(t, err)

	assert.Equal(t, []string{"123 Main St, Springfield, IL, 62701", "Springfield, IL 62701"}, fs.queries)
	require.NotNil(t, results["ID1"])
	assert.Equal(t, 39.78, results["ID1"].Latitude)
}

func TestResolveFallback_ExhaustsCandidates(t *testing.T) {
	addrs := []AddressInput{{ID: "ID1", Street: "123 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}}
	fs := &fakeSearcher{}

	results, err := ResolveFallback(context.Background(), fs, addrs, Results{})
	require.NoError(t, err)

	assert.Len(t, fs.queries, 3)
	v, ok := results["ID1"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestResolveFallback_ErrorIsFatal(t *testing.T) {
	addrs := []AddressInput{
		{ID: "ID1", City: "Austin", State: "TX"},
		{ID: "ID2", City: "Dallas", State: "TX"},
	}
	fs := &fakeSearcher{err: errors.New("connection refused")}

	_, err := ResolveFallback(context.Background(), fs, addrs, Results{})
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, []string{"Austin, TX"}, fs.queries, "no further queries after a service error")
}

package xregistry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "oui.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := ParseCSV(f)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Record{
		Assignment:   MAL,
		Prefix:       "246D5E",
		Organization: "TEST Systems, Inc",
		RawAddress:   "1 Test Way San Jose CA US 95134",
	}, records[0])
	assert.Nil(t, records[0].Address)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown_registry", "Registry,Assignment,Organization Name,Organization Address\nCID,0A0B0C,x,y\n"},
		{"wrong_columns", "Registry,Assignment,Organization Name,Organization Address\nMA-L,246D5E,x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	records, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseText(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "oui.txt"))
	require.NoError(t, err)
	defer f.Close()

	records, err := ParseText(f, MAL)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "246D5E", records[0].Prefix)
	assert.Equal(t, "TEST Systems, Inc", records[0].Organization)
	assert.Equal(t, &PostalAddress{
		Street:     "1 Test Way",
		City:       "San Jose",
		State:      "CA",
		PostalCode: "95134",
		Country:    "US",
	}, records[0].Address)

	assert.Equal(t, "ACDE48", records[1].Prefix)
	assert.Nil(t, records[1].Address)
}

func TestParseText_MAM(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "mam.txt"))
	require.NoError(t, err)
	defer f.Close()

	records, err := ParseText(f, MAM)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "79B74DA", records[0].Prefix)
	assert.Equal(t, MAM, records[0].Assignment)
	assert.Equal(t, "Suite 9, 4 Lab Lane", records[0].Address.Street)
	assert.Equal(t, "Austin", records[0].Address.City)
}

func TestParseText_Errors(t *testing.T) {
	_, err := ParseText(strings.NewReader(""), Assignment(0))
	assert.ErrorIs(t, err, ErrUnknownAssignment)

	_, err = ParseText(strings.NewReader("24-6D-5E   (hex)\t\tX\n246D5F     (base 16)\t\tX\n"), MAL)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestPostalAddress(t *testing.T) {
	assert.Nil(t, postalAddress(nil))
	assert.Equal(t, &PostalAddress{Country: "US"}, postalAddress([]string{"US"}))
	assert.Equal(t, &PostalAddress{City: "Taipei", PostalCode: "100", Country: "TW"},
		postalAddress([]string{"Taipei  100", "TW"}))
}

func copyFixtures(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := copyFixtures(t, "oui.csv", "mam.csv", "oui36.csv")

	s, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 3, s.Count(MAL))
	assert.Equal(t, 1, s.Count(MAM))
	assert.Equal(t, 1, s.Count(MAS))

	rec, ok := s.Lookup("24B7BD603000")
	require.True(t, ok)
	assert.Equal(t, "Micro TEST Inc", rec.Organization)
}

func TestLoadDir_TextFallbackAndMissing(t *testing.T) {
	dir := copyFixtures(t, "oui.txt", "mam.txt")

	s, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Zero(t, s.Count(MAS))

	rec, ok := s.Lookup("79B74DA00000")
	require.True(t, ok)
	require.NotNil(t, rec.Address)
	assert.Equal(t, "US", rec.Address.Country)
}

func TestLoadDir_Errors(t *testing.T) {
	_, err := LoadDir(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoData)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oui.csv"), []byte("h,h,h,h\nBAD,1,2,3\n"), 0o600))
	_, err = LoadDir(context.Background(), dir)
	assert.ErrorIs(t, err, ErrMalformed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadDir(ctx, copyFixtures(t, "oui.csv"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "oui.csv", CSVFile(MAL))
	assert.Equal(t, "mam.csv", CSVFile(MAM))
	assert.Equal(t, "oui36.csv", CSVFile(MAS))
	assert.Empty(t, CSVFile(0))
	assert.Equal(t, "oui36.txt", TextFile(MAS))
	assert.Empty(t, TextFile(0))
}

package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/extract"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"european thousands and decimals", "1.234,56", "1234.56", false},
		{"us thousands and decimals", "1,234.56", "1234.56", false},
		{"comma decimal", "123,45", "123.45", false},
		{"comma thousands", "1,234", "1234", false},
		{"dot decimal", "19.99", "19.99", false},
		{"currency suffix", "129,99 €", "129.99", false},
		{"currency prefix", "EUR 1.299,00", "1299", false},
		{"dollar prefix", "$ 19.99", "19.99", false},
		{"millions", "1.234.567,89", "1234567.89", false},
		{"single digit after comma is thousands", "1,5", "15", false},
		{"repeated commas are thousands", "1,234,567", "1234567", false},
		{"integer", "42", "42", false},
		{"empty", "", "", true},
		{"letters only", "precio", "", true},
		{"separators only", ".,", "", true},
		{"several dots", "1.234.567", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := extract.ParseNumber(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, extract.ErrNotANumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

package producturl_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/producturl"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		// Amazon product shapes
		{
			"dp with slug and tracking",
			"https://www.amazon.es/Samsung-Interno-MZ-V8V1T0BW/dp/B08V83JZH4/ref=sr_1_3?keywords=ssd&qid=1700000000&sr=8-3",
			"https://www.amazon.es/dp/B08V83JZH4",
			false,
		},
		{"gp product", "https://www.amazon.es/gp/product/B08V83JZH4?psc=1", "https://www.amazon.es/dp/B08V83JZH4", false},
		{"mobile gp aw d", "http://www.amazon.es/gp/aw/d/B08V83JZH4", "https://www.amazon.es/dp/B08V83JZH4", false},
		{"product path", "https://amazon.com/product/b08v83jzh4/", "https://amazon.com/dp/B08V83JZH4", false},
		{"uppercase host", "https://WWW.AMAZON.ES/dp/B08V83JZH4#reviews", "https://www.amazon.es/dp/B08V83JZH4", false},
		{"amazon without asin", "https://www.amazon.es/s?k=ssd&ref=nb_sb_noss", "https://www.amazon.es/s?k=ssd", false},

		// Other stores
		{
			"generic store strips tracking",
			"http://shop.example.com/item/42/?utm_source=mail&utm_medium=x&fbclid=abc&color=red",
			"https://shop.example.com/item/42?color=red",
			false,
		},
		{"dp path on another host", "https://example.com/dp/B08V83JZH4?tag=x", "https://example.com/dp/B08V83JZH4", false},
		{"pd_rd family", "https://example.com/p?pd_rd_w=1&pf_rd_p=2&id=9", "https://example.com/p?id=9", false},
		{"default port", "https://example.com:443/a/./b", "https://example.com/a/b", false},

		// Errors
		{"empty", "  ", "", true},
		{"missing scheme", "www.amazon.es/dp/B08V83JZH4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := producturl.Canonicalize(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	t.Parallel()

	first, err := producturl.Canonicalize("https://www.amazon.es/x/dp/B08V83JZH4?th=1")
	require.NoError(t, err)
	second, err := producturl.Canonicalize(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestASIN(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://www.amazon.es/Some-Name/dp/B0ABCDEF12?ref=x")
	require.NoError(t, err)
	asin, ok := producturl.ASIN(u)
	require.True(t, ok)
	assert.Equal(t, "B0ABCDEF12", asin)

	u, err = url.Parse("https://www.amazon.es/dp/SHORT")
	require.NoError(t, err)
	_, ok = producturl.ASIN(u)
	assert.False(t, ok)
}

func TestIsAmazonHost(t *testing.T) {
	t.Parallel()

	assert.True(t, producturl.IsAmazonHost("www.amazon.es"))
	assert.True(t, producturl.IsAmazonHost("amazon.co.uk"))
	assert.True(t, producturl.IsAmazonHost("smile.amazon.com"))
	assert.False(t, producturl.IsAmazonHost("notamazon.es"))
	assert.False(t, producturl.IsAmazonHost("example.com"))
}

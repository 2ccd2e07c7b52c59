package googlebooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialibre/mediatheque/internal/canonical"
)

func TestNormalizeCoverURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"http upgraded, curl stripped, zoom forced",
			"http://books.google.com/books/content?id=X&printsec=frontcover&img=1&zoom=1&edge=curl&source=gbs_api",
			"https://books.google.com/books/content?id=X&printsec=frontcover&img=1&zoom=0&source=gbs_api",
		},
		{
			"protocol relative",
			"//books.google.com/books/content?id=X&zoom=5",
			"https://books.google.com/books/content?id=X&zoom=0",
		},
		{
			"root relative",
			"/books/content?id=X&zoom=1",
			"https://books.google.com/books/content?id=X&zoom=0",
		},
		{
			"already normalized is unchanged",
			"https://books.google.com/books/content?id=X&zoom=0",
			"https://books.google.com/books/content?id=X&zoom=0",
		},
		{
			"curl as only query parameter",
			"https://books.google.com/books/content?edge=curl",
			"https://books.google.com/books/content",
		},
		{
			"curl first of several parameters",
			"https://books.google.com/books/content?edge=curl&zoom=1",
			"https://books.google.com/books/content?zoom=0",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCoverURL(tt.input))
		})
	}
}

func TestNormalizeCoverURLIdempotent(t *testing.T) {
	once := NormalizeCoverURL("http://books.google.com/books/content?id=X&zoom=3&edge=curl")
	twice := NormalizeCoverURL(once)
	assert.Equal(t, once, twice)
}

func TestCoverURLQualityOrder(t *testing.T) {
	links := ImageLinks{
		SmallThumbnail: "https://img/small",
		Thumbnail:      "https://img/thumb",
		Medium:         "https://img/medium",
		Large:          "https://img/large",
	}
	assert.Equal(t, "https://img/large", CoverURL(links, "vol1"))

	links.Large = ""
	assert.Equal(t, "https://img/medium", CoverURL(links, "vol1"))

	links.Medium = ""
	assert.Equal(t, "https://img/thumb", CoverURL(links, "vol1"))
}

func TestCoverURLSynthesizedFromID(t *testing.T) {
	got := CoverURL(ImageLinks{}, "PCDengEACAAJ")
	assert.Equal(t, "https://books.google.com/books/content?id=PCDengEACAAJ&printsec=frontcover&img=1&zoom=0", got)

	assert.Equal(t, "", CoverURL(ImageLinks{}, ""))
}

func TestFlattenCategories(t *testing.T) {
	got := FlattenCategories([]string{"Fiction/Romance/Paranormal"})
	assert.Equal(t, []string{"Romance", "Paranormal"}, got)

	// single-segment Fiction is kept
	got = FlattenCategories([]string{"Fiction"})
	assert.Equal(t, []string{"Fiction"}, got)

	// dedup across category strings
	got = FlattenCategories([]string{"Fiction / Romance", "Romance"})
	assert.Equal(t, []string{"Romance"}, got)
}

func TestExtractPrice(t *testing.T) {
	sale := SaleInfo{
		ListPrice:   &Price{Amount: 9.99, CurrencyCode: "EUR"},
		RetailPrice: &Price{Amount: 7.99, CurrencyCode: "EUR"},
	}
	price, currency := ExtractPrice(sale)
	require.NotNil(t, price)
	assert.Equal(t, 9.99, *price)
	assert.Equal(t, "EUR", currency)

	sale.ListPrice = nil
	price, currency = ExtractPrice(sale)
	require.NotNil(t, price)
	assert.Equal(t, 7.99, *price)

	price, currency = ExtractPrice(SaleInfo{})
	assert.Nil(t, price)
	assert.Equal(t, "", currency)
}

func TestNormalizeVolume(t *testing.T) {
	v := Volume{
		ID: "PCDengEACAAJ",
		VolumeInfo: VolumeInfo{
			Title:         "The Catcher in the Rye",
			Subtitle:      "A Novel",
			Authors:       []string{"J.D. Salinger"},
			Publisher:     "Little, Brown",
			PublishedDate: "1991",
			Description:   "The hero-narrator...",
			PageCount:     277,
			Categories:    []string{"Fiction/Classics"},
			AverageRating: 3.8,
			RatingsCount:  6789,
			Language:      "en",
			ImageLinks: ImageLinks{
				Thumbnail: "http://books.google.com/books/content?id=PCDengEACAAJ&zoom=1&edge=curl",
			},
			IndustryIdentifiers: []IndustryIdentifier{
				{Type: "ISBN_10", Identifier: "0316769487"},
				{Type: "ISBN_13", Identifier: "978-0-316-76948-8"},
			},
		},
	}

	rec := Normalize(v)
	assert.Equal(t, canonical.SourceGoogleBooks, rec.SourceName)
	assert.Equal(t, "PCDengEACAAJ", rec.ExternalID)
	assert.Equal(t, "1991-01-01", rec.ReleaseDate)
	assert.Equal(t, []string{"Classics"}, rec.Genres)
	assert.Equal(t, "0316769487", rec.ISBN10)
	assert.Equal(t, "9780316769488", rec.ISBN13)
	assert.Equal(t, "https://books.google.com/books/content?id=PCDengEACAAJ&zoom=0", rec.CoverURL)
}

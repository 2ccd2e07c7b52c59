package bnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIdentifier(t *testing.T) {
	tests := []struct {
		name        string
		identifiers []string
		want        string
	}{
		{
			"ark wins over isbn",
			[]string{"ark:/12148/cb123456789", "ISBN 978-2-07-061275-8"},
			"ark:/12148/cb123456789",
		},
		{
			"ark wins regardless of order",
			[]string{"FRBNF34567891", "https://catalogue.bnf.fr/ark:/12148/cb407140817"},
			"ark:/12148/cb407140817",
		},
		{
			"frbnf fallback",
			[]string{"ISBN 2070360024", "FRBNF34567891"},
			"FRBNF34567891",
		},
		{
			"raw ark-containing value as last resort",
			[]string{"ark:/12148/bpt6k107371t"},
			"ark:/12148/bpt6k107371t",
		},
		{"nothing usable", []string{"ISBN 2070360024"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveIdentifier(tt.identifiers))
		})
	}
}

func TestExtractISBNs(t *testing.T) {
	i10, i13 := ExtractISBNs([]string{"ark:/12148/cb123456789", "ISBN 978-2-07-061275-8"})
	assert.Equal(t, "", i10)
	assert.Equal(t, "9782070612758", i13)

	i10, i13 = ExtractISBNs([]string{"ISBN 2-07-036002-4"})
	assert.Equal(t, "2070360024", i10)
	assert.Equal(t, "", i13)

	// bare token without the ISBN prefix
	i10, i13 = ExtractISBNs([]string{"id 9782070612758"})
	assert.Equal(t, "9782070612758", i13)
	_ = i10
}

func TestExtractFieldsAndNormalize(t *testing.T) {
	fragment := `<srw:record>
		<dc:title>Le Petit Prince</dc:title>
		<dc:title>avec des aquarelles de l'auteur</dc:title>
		<dc:creator>Saint-Exup&#233;ry, Antoine de</dc:creator>
		<dc:date>1946</dc:date>
		<dc:publisher>Gallimard</dc:publisher>
		<dc:language>fre</dc:language>
		<dc:identifier>ark:/12148/cb32378444j</dc:identifier>
		<dc:identifier>ISBN 978-2-07-061275-8</dc:identifier>
	</srw:record>`

	raw := extractFields(fragment)
	assert.Equal(t, []string{"Le Petit Prince", "avec des aquarelles de l'auteur"}, raw["title"])
	assert.Equal(t, []string{"Saint-Exupéry, Antoine de"}, raw["creator"])

	rec := normalizeRecord(raw)
	assert.Equal(t, "Le Petit Prince", rec.Title)
	assert.Equal(t, "avec des aquarelles de l'auteur", rec.Subtitle)
	assert.Equal(t, "1946-01-01", rec.ReleaseDate)
	assert.Equal(t, "9782070612758", rec.ISBN13)
}

func TestSplitRecordsSkipsMalformed(t *testing.T) {
	body := `<srw:searchRetrieveResponse>
		<srw:numberOfRecords>2</srw:numberOfRecords>
		<srw:record><dc:title>One</dc:title></srw:record>
		<srw:record><dc:title>Two</dc:title></srw:record>
	</srw:searchRetrieveResponse>`

	fragments := splitRecords(body)
	assert.Len(t, fragments, 2)
	assert.Equal(t, 2, totalRecords(body))
}

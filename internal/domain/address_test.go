package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressMatches(t *testing.T) {
	t.Parallel()

	base := Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25}

	tests := []struct {
		name  string
		other Address
		want  bool
	}{
		{
			name:  "identical",
			other: Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25},
			want:  true,
		},
		{
			name:  "containment ignores case",
			other: Address{City: CitySPB, StreetName: "садовая улица", StreetPrefix: "ул", House: 25},
			want:  true,
		},
		{
			name:  "zero house is a wildcard",
			other: Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул"},
			want:  true,
		},
		{
			name:  "empty prefix is a wildcard",
			other: Address{City: CitySPB, StreetName: "Садовая", House: 25},
			want:  true,
		},
		{
			name:  "different house",
			other: Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 26},
			want:  false,
		},
		{
			name:  "different prefix",
			other: Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "пер", House: 25},
			want:  false,
		},
		{
			name:  "different city",
			other: Address{City: CityRND, StreetName: "Садовая", StreetPrefix: "ул", House: 25},
			want:  false,
		},
		{
			name:  "unrelated street",
			other: Address{City: CitySPB, StreetName: "Тихая", StreetPrefix: "ул", House: 25},
			want:  false,
		},
		{
			name:  "empty street never matches",
			other: Address{City: CitySPB, StreetPrefix: "ул", House: 25},
			want:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, base.Matches(tt.other))
			require.Equal(t, tt.want, tt.other.Matches(base), "predicate must be symmetric")
		})
	}
}

func TestAddressAsMapKey(t *testing.T) {
	t.Parallel()

	a := Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25, Raw: "x"}
	b := Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25, Raw: "x"}

	m := map[Address]int{a: 1}
	m[b]++
	require.Len(t, m, 1)
	require.Equal(t, 2, m[a])
}

func TestAddressString(t *testing.T) {
	t.Parallel()

	withHouse := Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул", House: 25}
	require.Equal(t, "SPB, ул. Садовая, д. 25", withHouse.String())

	wholeStreet := Address{City: CitySPB, StreetName: "Садовая", StreetPrefix: "ул"}
	require.Equal(t, "SPB, ул. Садовая", wholeStreet.String())
}

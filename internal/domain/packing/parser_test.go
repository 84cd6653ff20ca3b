package packing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	text := "Essentials:\n- Passport\n- Wallet\n\nClothing:\n- 3 T-shirts\n"

	cats := ParseCategories(text)

	require.Equal(t, []Category{
		{Name: "Essentials", Items: []Item{{Name: "Passport", Quantity: 1}, {Name: "Wallet", Quantity: 1}}},
		{Name: "Clothing", Items: []Item{{Name: "3 T-shirts", Quantity: 1}}},
	}, cats)
}

func TestParseCategoriesMarkersAndContinuations(t *testing.T) {
	text := `Here is your list
**Toiletries**:
• Toothbrush
* Toothpaste
Floss
Note: bring extras
## Electronics:
- Charger`

	cats := ParseCategories(text)

	require.Len(t, cats, 2)
	require.Equal(t, "Toiletries", cats[0].Name)
	require.Equal(t, []string{"Toothbrush", "Toothpaste", "Floss"}, itemNames(cats[0]))
	require.Equal(t, "Electronics", cats[1].Name)
	require.Equal(t, []string{"Charger"}, itemNames(cats[1]))
}

func TestParseCategoriesDropsEmptyHeaders(t *testing.T) {
	require.Empty(t, ParseCategories("Essentials:\nClothing:\n"))
	require.Empty(t, ParseCategories(""))
	require.Empty(t, ParseCategories("- orphan item\nno header here"))
}

func TestParseCategoriesMergesDuplicateHeaders(t *testing.T) {
	cats := ParseCategories("Clothing:\n- Socks\nToiletries:\n- Soap\nClothing:\n- Hat\n")

	require.Equal(t, []string{"Clothing", "Toiletries"}, names(cats))
	require.Equal(t, []string{"Socks", "Hat"}, itemNames(cats[0]))
}

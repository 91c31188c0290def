package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/lockerstudio/itemshop-scrap/internal/models"
	"github.com/stretchr/testify/require"
)

func decodeState(t *testing.T, raw string) any {
	t.Helper()
	var state any
	require.NoError(t, json.Unmarshal([]byte(raw), &state))
	return state
}

func TestLocateEntriesNestedPricing(t *testing.T) {
	state := decodeState(t, `{
		"routes": {
			"shop": {
				"items": [
					{"offerId": "X1", "title": "Cool Skin", "englishTitle": "Cool Skin", "urlName": "cool-skin", "assetType": "outfit", "pricing": {"finalPrice": 1500, "originalPrice": 2000}},
					{"offerId": "X2", "title": "Pico Raro", "price": 800, "color1": "#fff"}
				]
			}
		}
	}`)

	entries := LocateEntries(state)
	require.Len(t, entries, 2)

	byID := map[string]models.CatalogEntry{}
	for _, e := range entries {
		byID[e.OfferID] = e
	}
	require.Equal(t, 1500, byID["X1"].Price)
	require.Equal(t, 2000, byID["X1"].OriginalPrice)
	require.Equal(t, "cool-skin", byID["X1"].URLName)
	require.Equal(t, "outfit", byID["X1"].AssetType)
	require.Equal(t, 800, byID["X2"].Price)
	require.Equal(t, "#fff", byID["X2"].Color1)
}

func TestLocateEntriesRecordsAndDescends(t *testing.T) {
	// A qualifying node may itself contain further entries.
	state := decodeState(t, `{
		"offerId": "BUNDLE", "title": "Bundle",
		"price": 2800,
		"children": [
			{"offerId": "X1", "title": "Part One", "price": 1500}
		]
	}`)

	entries := LocateEntries(state)
	require.Len(t, entries, 2)
}

func TestLocateEntriesDepthCap(t *testing.T) {
	entry := map[string]any{"offerId": "DEEP", "title": "Deep", "price": 100.0}

	wrap := func(levels int) any {
		node := any(entry)
		for i := 0; i < levels; i++ {
			node = map[string]any{"next": node}
		}
		return node
	}

	require.Len(t, LocateEntries(wrap(9)), 1)
	require.Empty(t, LocateEntries(wrap(11)))
}

func TestLocateEntriesRejectsPartialNodes(t *testing.T) {
	state := decodeState(t, `{
		"a": {"offerId": "X1"},
		"b": {"title": "No Offer"},
		"c": {"offerId": "", "title": "Blank"}
	}`)
	require.Empty(t, LocateEntries(state))
}

func TestLocateEntriesNilState(t *testing.T) {
	require.Empty(t, LocateEntries(nil))
	require.Empty(t, LocateEntries("scalar"))
	require.Equal(t, "", FirstOfferID(nil))
}

func TestFirstOfferID(t *testing.T) {
	state := decodeState(t, `{
		"catalog": {"offerId": "ROOT-OFFER"},
		"deeper": {"items": [{"offerId": "X1", "title": "Skin", "price": 500}]}
	}`)
	require.Equal(t, "ROOT-OFFER", FirstOfferID(state))
}

func TestLocateEntriesDeterministicOrder(t *testing.T) {
	raw := `{
		"b": {"offerId": "X2", "title": "Two", "price": 200},
		"a": {"offerId": "X1", "title": "One", "price": 100}
	}`
	first := LocateEntries(decodeState(t, raw))
	for i := 0; i < 10; i++ {
		require.Equal(t, first, LocateEntries(decodeState(t, raw)))
	}
}

package amazon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInventoryKeepsZeroQuantity(t *testing.T) {
	raw := json.RawMessage(`{"payload":{"inventorySummaries":[
		{"sellerSku":"SKU-A","asin":"B01","fnSku":"X01","productName":"Widget","totalQuantity":5},
		{"sellerSku":"SKU-B","asin":"B02","totalQuantity":0}
	]}}`)

	items, err := ParseInventory(raw)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, 0, items[1].Quantity)
}

func TestActiveInventoryFiltersZeroQuantity(t *testing.T) {
	items := []InventoryItem{
		{SKU: "SKU-A", Quantity: 5},
		{SKU: "SKU-B", Quantity: 0},
		{SKU: "SKU-C", Quantity: 1},
	}

	active := ActiveInventory(items)
	assert.Len(t, active, 2)
	assert.Equal(t, "SKU-A", active[0].SKU)
	assert.Equal(t, "SKU-C", active[1].SKU)
}

func TestParseCatalogItemMixedAttributeTypes(t *testing.T) {
	// item_name is a string, list_price and item_weight are numbers.
	raw := json.RawMessage(`{
		"asin":"B0TEST01",
		"attributes":{
			"item_name":[{"value":"Stainless Water Bottle"}],
			"brand":[{"value":"HydraCo"}],
			"list_price":[{"value":19.99}],
			"item_weight":[{"value":500,"unit":"grams"}],
			"bullet_point":[{"value":"Keeps drinks cold"},{"value":"BPA free"}],
			"externally_assigned_product_identifier":[
				{"type":"upc","value":"012345678905"},
				{"type":"ean","value":"4006381333931"}
			],
			"item_package_dimensions":[{
				"length":{"value":10,"unit":"centimeters"},
				"width":{"value":8,"unit":"centimeters"},
				"height":{"value":25,"unit":"centimeters"}
			}]
		}
	}`)

	item, err := ParseCatalogItem(raw)
	assert.NoError(t, err)
	assert.Equal(t, "B0TEST01", item.ASIN)
	assert.Equal(t, "Stainless Water Bottle", item.Title)
	assert.Equal(t, "HydraCo", item.Brand)
	assert.Equal(t, "19.99", item.Price)
	assert.Equal(t, []string{"Keeps drinks cold", "BPA free"}, item.Bullets)
	assert.Equal(t, "012345678905", item.UPC)
	assert.Equal(t, "4006381333931", item.EAN)

	assert.NotNil(t, item.Weight)
	assert.Equal(t, 500.0, item.Weight.Value)
	assert.Equal(t, "grams", item.Weight.Unit)

	assert.NotNil(t, item.Dimensions)
	assert.Equal(t, 25.0, item.Dimensions.Height.Value)
}

func TestParseCatalogItemRejectsNonNumericWeight(t *testing.T) {
	raw := json.RawMessage(`{
		"asin":"B0TEST04",
		"attributes":{
			"item_name":[{"value":"Bulky Thing"}],
			"item_weight":[{"value":"12.5 lbs","unit":"pounds"}]
		}
	}`)

	item, err := ParseCatalogItem(raw)
	assert.NoError(t, err)
	assert.Nil(t, item.Weight)
}

func TestParseCatalogItemFallsBackToSummaries(t *testing.T) {
	raw := json.RawMessage(`{
		"asin":"B0TEST02",
		"attributes":{},
		"summaries":[{"itemName":"Summary Title","brand":"Summary Brand"}]
	}`)

	item, err := ParseCatalogItem(raw)
	assert.NoError(t, err)
	assert.Equal(t, "Summary Title", item.Title)
	assert.Equal(t, "Summary Brand", item.Brand)
	assert.Empty(t, item.UPC)
	assert.Nil(t, item.Weight)
}

func TestSelectImagesLargestPerVariantPrimaryFirst(t *testing.T) {
	raw := json.RawMessage(`{
		"asin":"B0TEST03",
		"images":[{"images":[
			{"variant":"MAIN","link":"https://img/main-small","width":75,"height":75},
			{"variant":"PT01","link":"https://img/pt01","width":500,"height":500},
			{"variant":"MAIN","link":"https://img/main-large","width":1000,"height":1000}
		]}]
	}`)

	item, err := ParseCatalogItem(raw)
	assert.NoError(t, err)
	assert.Len(t, item.Images, 2)
	assert.Equal(t, "MAIN", item.Images[0].Variant)
	assert.Equal(t, "https://img/main-large", item.Images[0].URL)
	assert.Equal(t, "PT01", item.Images[1].Variant)
}

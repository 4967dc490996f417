package amazon

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// primaryImageVariant sorts first so it can be used as the featured image.
const primaryImageVariant = "MAIN"

// ParseInventory normalizes a raw inventory-summaries payload. Zero-quantity
// entries are kept; use ActiveInventory for the in-stock view.
func ParseInventory(raw json.RawMessage) ([]InventoryItem, error) {
	var resp inventorySummariesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode inventory summaries: %w", err)
	}

	items := make([]InventoryItem, 0, len(resp.Payload.InventorySummaries))
	for _, s := range resp.Payload.InventorySummaries {
		items = append(items, InventoryItem{
			SKU:      s.SellerSKU,
			ASIN:     s.ASIN,
			FNSKU:    s.FNSKU,
			Name:     s.ProductName,
			Quantity: s.TotalQuantity,
		})
	}
	return items, nil
}

// ActiveInventory filters out entries without positive stock.
func ActiveInventory(items []InventoryItem) []InventoryItem {
	active := make([]InventoryItem, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			active = append(active, item)
		}
	}
	return active
}

// ParseCatalogItem normalizes a raw catalog-items payload. Missing
// attributes yield empty values, never errors.
func ParseCatalogItem(raw json.RawMessage) (*CatalogItem, error) {
	var resp catalogItemResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog item: %w", err)
	}

	attrs := resp.Attributes

	var summaryName, summaryBrand string
	if len(resp.Summaries) > 0 {
		summaryName = resp.Summaries[0].ItemName
		summaryBrand = resp.Summaries[0].Brand
	}

	title := firstValue(attrs, "item_name")
	if title == "" {
		title = summaryName
	}
	brand := firstValue(attrs, "brand")
	if brand == "" {
		brand = summaryBrand
	}

	var bullets []string
	for _, b := range attrs["bullet_point"] {
		bullets = append(bullets, string(b.Value))
	}

	item := &CatalogItem{
		ASIN:        resp.ASIN,
		Title:       title,
		Brand:       brand,
		Description: firstValue(attrs, "product_description"),
		Bullets:     bullets,
		Price:       firstValue(attrs, "list_price"),
		Images:      selectImages(resp),
		UPC:         findIdentifier(attrs, "upc"),
		EAN:         findIdentifier(attrs, "ean"),
	}

	if weights := attrs["item_weight"]; len(weights) > 0 {
		if v, err := strconv.ParseFloat(string(weights[0].Value), 64); err == nil {
			item.Weight = &Measurement{Value: v, Unit: weights[0].Unit}
		}
	}
	if dims := attrs["item_package_dimensions"]; len(dims) > 0 {
		item.Dimensions = &Dimensions{
			Length: dims[0].Length,
			Width:  dims[0].Width,
			Height: dims[0].Height,
		}
	}

	return item, nil
}

// selectImages keeps the largest image per variant role, primary role first.
func selectImages(resp catalogItemResponse) []Image {
	if len(resp.Images) == 0 {
		return nil
	}

	best := make(map[string]Image)
	for _, img := range resp.Images[0].Images {
		variant := img.Variant
		if variant == "" {
			variant = primaryImageVariant
		}
		if current, ok := best[variant]; !ok || img.Height > current.Height {
			best[variant] = Image{
				Variant: variant,
				URL:     img.Link,
				Width:   img.Width,
				Height:  img.Height,
			}
		}
	}

	images := make([]Image, 0, len(best))
	for _, img := range best {
		images = append(images, img)
	}
	sort.Slice(images, func(i, j int) bool {
		if images[i].Variant == primaryImageVariant {
			return true
		}
		if images[j].Variant == primaryImageVariant {
			return false
		}
		return images[i].Variant < images[j].Variant
	})
	return images
}

// firstValue applies first-array-element-wins semantics to scalar attributes.
func firstValue(attrs map[string][]catalogAttribute, key string) string {
	if values := attrs[key]; len(values) > 0 {
		return string(values[0].Value)
	}
	return ""
}

// findIdentifier scans the tagged identifier list for a matching type code.
func findIdentifier(attrs map[string][]catalogAttribute, idType string) string {
	for _, id := range attrs["externally_assigned_product_identifier"] {
		if id.Type == idType {
			return string(id.Value)
		}
	}
	return ""
}

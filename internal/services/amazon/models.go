package amazon

import "encoding/json"

// SP-API wire shapes. Only the fields the bridge reads are declared.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// flexValue tolerates the mixed string/number attribute values SP-API
// returns (item_name is a string, list_price and item_weight are numbers).
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexValue(s)
		return nil
	}
	*f = flexValue(string(b))
	return nil
}

type apiErrorBody struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ---- Sellers ----

type marketplaceParticipationsResponse struct {
	Payload []struct {
		Marketplace struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"marketplace"`
		Participation struct {
			IsParticipating bool `json:"isParticipating"`
		} `json:"participation"`
	} `json:"payload"`
}

// ---- FBA inventory ----

type inventorySummariesResponse struct {
	Payload struct {
		InventorySummaries []inventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
}

type inventorySummary struct {
	SellerSKU     string `json:"sellerSku"`
	ASIN          string `json:"asin"`
	FNSKU         string `json:"fnSku"`
	ProductName   string `json:"productName"`
	TotalQuantity int    `json:"totalQuantity"`
}

// InventoryItem is one FBA stock record, normalized.
type InventoryItem struct {
	SKU      string `json:"sku"`
	ASIN     string `json:"asin"`
	FNSKU    string `json:"fnsku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ---- Catalog ----

type catalogItemResponse struct {
	ASIN       string                        `json:"asin"`
	Attributes map[string][]catalogAttribute `json:"attributes"`
	Images     []struct {
		Images []catalogImage `json:"images"`
	} `json:"images"`
	Summaries []struct {
		ItemName string `json:"itemName"`
		Brand    string `json:"brand"`
	} `json:"summaries"`
}

type catalogAttribute struct {
	Value flexValue `json:"value"`
	Type  string    `json:"type"`
	Unit  string    `json:"unit"`

	// item_package_dimensions nests per-axis measurements.
	Length *Measurement `json:"length"`
	Width  *Measurement `json:"width"`
	Height *Measurement `json:"height"`
}

type catalogImage struct {
	Variant string `json:"variant"`
	Link    string `json:"link"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// Measurement is a unit-tagged scalar from catalog attributes.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Image is one catalog image, highest resolution for its variant role.
type Image struct {
	Variant string `json:"variant"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// CatalogItem is the normalized view of a catalog lookup.
type CatalogItem struct {
	ASIN        string       `json:"asin"`
	Title       string       `json:"title"`
	Brand       string       `json:"brand"`
	Description string       `json:"description"`
	Bullets     []string     `json:"bullets"`
	Price       string       `json:"price"`
	Images      []Image      `json:"images"`
	Weight      *Measurement `json:"weight"`
	Dimensions  *Dimensions  `json:"dimensions"`
	UPC         string       `json:"upc"`
	EAN         string       `json:"ean"`
}

// Dimensions is the package dimension set from catalog attributes.
type Dimensions struct {
	Length *Measurement `json:"length"`
	Width  *Measurement `json:"width"`
	Height *Measurement `json:"height"`
}

// ---- Fulfillment outbound ----

// Address is the MCF destination address shape.
type Address struct {
	Name          string `json:"name"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2,omitempty"`
	City          string `json:"city"`
	StateOrRegion string `json:"stateOrRegion"`
	PostalCode    string `json:"postalCode"`
	CountryCode   string `json:"countryCode"`
	Phone         string `json:"phone,omitempty"`
}

// FulfillmentOrderItem is one order line submitted to MCF.
type FulfillmentOrderItem struct {
	SellerSKU                    string `json:"sellerSku"`
	SellerFulfillmentOrderItemID string `json:"sellerFulfillmentOrderItemId"`
	Quantity                     int    `json:"quantity"`
}

// CreateFulfillmentOrderRequest is the MCF order-creation payload.
type CreateFulfillmentOrderRequest struct {
	SellerFulfillmentOrderID string                 `json:"sellerFulfillmentOrderId"`
	DisplayableOrderID       string                 `json:"displayableOrderId"`
	DisplayableOrderDate     string                 `json:"displayableOrderDate"`
	DisplayableOrderComment  string                 `json:"displayableOrderComment"`
	ShippingSpeedCategory    string                 `json:"shippingSpeedCategory"`
	FulfillmentAction        string                 `json:"fulfillmentAction"`
	FulfillmentPolicy        string                 `json:"fulfillmentPolicy"`
	DestinationAddress       Address                `json:"destinationAddress"`
	MarketplaceID            string                 `json:"marketplaceId"`
	Items                    []FulfillmentOrderItem `json:"items"`
	NotificationEmails       []string               `json:"notificationEmails,omitempty"`
}

type getFulfillmentOrderResponse struct {
	Payload FulfillmentOrderDetail `json:"payload"`
}

// FulfillmentOrderDetail is the status view of an MCF order.
type FulfillmentOrderDetail struct {
	FulfillmentOrder struct {
		SellerFulfillmentOrderID string `json:"sellerFulfillmentOrderId"`
		FulfillmentOrderStatus   string `json:"fulfillmentOrderStatus"`
	} `json:"fulfillmentOrder"`
	FulfillmentShipments []FulfillmentShipment `json:"fulfillmentShipments"`
}

// FulfillmentShipment is one shipment within an MCF order.
type FulfillmentShipment struct {
	FulfillmentShipmentStatus  string                       `json:"fulfillmentShipmentStatus"`
	FulfillmentShipmentPackage []FulfillmentShipmentPackage `json:"fulfillmentShipmentPackage"`
}

// FulfillmentShipmentPackage carries the tracking data for one package.
type FulfillmentShipmentPackage struct {
	TrackingNumber string `json:"trackingNumber"`
	CarrierCode    string `json:"carrierCode"`
}

// PreviewItem is one line of a fulfillment preview request.
type PreviewItem struct {
	SellerSKU                    string `json:"sellerSku"`
	SellerFulfillmentOrderItemID string `json:"sellerFulfillmentOrderItemId"`
	Quantity                     int    `json:"quantity"`
}

type fulfillmentPreviewRequest struct {
	MarketplaceID           string        `json:"marketplaceId"`
	Address                 Address       `json:"address"`
	Items                   []PreviewItem `json:"items"`
	ShippingSpeedCategories []string      `json:"shippingSpeedCategories"`
}

type fulfillmentPreviewResponse struct {
	Payload struct {
		FulfillmentPreviews []FulfillmentPreview `json:"fulfillmentPreviews"`
	} `json:"payload"`
}

// FulfillmentPreview is one shipping-speed option with its fulfillability.
type FulfillmentPreview struct {
	ShippingSpeedCategory       string       `json:"shippingSpeedCategory"`
	IsFulfillable               bool         `json:"isFulfillable"`
	EstimatedShippingWeight     *Measurement `json:"estimatedShippingWeight"`
	FulfillmentPreviewShipments []struct {
		EarliestArrivalDate string `json:"earliestArrivalDate"`
		LatestArrivalDate   string `json:"latestArrivalDate"`
	} `json:"fulfillmentPreviewShipments"`
}

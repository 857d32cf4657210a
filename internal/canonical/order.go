// Package canonical defines the normalized order shape served to the polling
// partner and the tolerant normalizer that produces it from arbitrarily
// shaped upstream documents.
package canonical

// Order is the canonical order representation. Optional fields are omitted
// from the serialized form when absent; empty strings and zero amounts are
// kept.
type Order struct {
	ID                       string    `json:"id"`
	DisplayID                string    `json:"displayId,omitempty"`
	OrderType                string    `json:"orderType,omitempty"`
	SalesChannel             string    `json:"salesChannel,omitempty"`
	OrderTiming              string    `json:"orderTiming,omitempty"`
	CreatedAt                string    `json:"createdAt,omitempty"`
	PreparationStartDateTime string    `json:"preparationStartDateTime,omitempty"`
	Merchant                 Merchant  `json:"merchant"`
	Total                    Total     `json:"total"`
	Payments                 Payments  `json:"payments"`
	Customer                 Customer  `json:"customer"`
	Delivery                 *Delivery `json:"delivery,omitempty"`
	Items                    []Item    `json:"items"`
}

type Merchant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Total struct {
	SubTotal       float64 `json:"subTotal"`
	DeliveryFee    float64 `json:"deliveryFee"`
	OrderAmount    float64 `json:"orderAmount"`
	Benefits       float64 `json:"benefits"`
	AdditionalFees float64 `json:"additionalFees"`
}

type Payments struct {
	Methods []PaymentMethod `json:"methods"`
	Pending float64         `json:"pending"`
	Prepaid float64         `json:"prepaid"`
}

type PaymentMethod struct {
	Method   string  `json:"method"`
	Type     string  `json:"type"`
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

type Customer struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          Phone  `json:"phone"`
	DocumentNumber string `json:"documentNumber,omitempty"`
}

type Phone struct {
	Number              string `json:"number"`
	Localizer           string `json:"localizer,omitempty"`
	LocalizerExpiration string `json:"localizerExpiration,omitempty"`
}

// Delivery is present only on DELIVERY orders.
type Delivery struct {
	Mode             string  `json:"mode"`
	DeliveredBy      string  `json:"deliveredBy"`
	PickupCode       string  `json:"pickupCode,omitempty"`
	DeliveryDateTime string  `json:"deliveryDateTime"`
	DeliveryAddress  Address `json:"deliveryAddress"`
}

type Address struct {
	Country      string `json:"country"`
	State        string `json:"state"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	StreetName   string `json:"streetName"`
	StreetNumber string `json:"streetNumber"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Reference    string `json:"reference,omitempty"`
}

type Item struct {
	ID           string   `json:"id"`
	ExternalCode string   `json:"externalCode,omitempty"`
	Name         string   `json:"name"`
	Quantity     int      `json:"quantity"`
	UnitPrice    float64  `json:"unitPrice"`
	TotalPrice   float64  `json:"totalPrice"`
	Observations string   `json:"observations,omitempty"`
	Options      []Option `json:"options,omitempty"`
}

type Option struct {
	OptionID        string  `json:"optionId"`
	ExternalCode    string  `json:"externalCode,omitempty"`
	Name            string  `json:"name"`
	OptionGroupID   string  `json:"optionGroupId,omitempty"`
	OptionGroupName string  `json:"optionGroupName,omitempty"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
}

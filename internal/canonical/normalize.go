package canonical

import (
	"errors"
	"time"

	"github.com/mrussa/order-bridge/internal/bundle"
)

// ErrMissingID is the only hard normalization failure: a document without a
// resolvable identifier cannot be stored or referenced by the poller.
var ErrMissingID = errors.New("order id missing")

// Defaults fill fields the upstream document routinely omits.
type Defaults struct {
	MerchantID   string
	MerchantName string
}

var idKeys = []string{"id", "order_id", "orderId", "reference"}

// ResolveID extracts the order identifier from a document, or "" when none
// of the accepted spellings is present.
func ResolveID(doc bundle.Document) string {
	return pickString(doc, idKeys...)
}

// Normalize converts an upstream order document into the canonical shape.
// Every field access degrades to a typed default rather than propagating an
// error; only a missing identifier fails.
func Normalize(doc bundle.Document, d Defaults) (*Order, error) {
	return NormalizeAt(doc, d, time.Now())
}

// NormalizeAt is Normalize with an explicit ingestion time, used as the
// fallback for absent or unparseable timestamps.
func NormalizeAt(doc bundle.Document, d Defaults, now time.Time) (*Order, error) {
	id := ResolveID(doc)
	if id == "" {
		return nil, ErrMissingID
	}

	o := &Order{
		ID:           id,
		DisplayID:    orDefault(pickString(doc, "displayId", "display_id", "number", "numero"), id),
		OrderType:    orDefault(upper(pickString(doc, "orderType", "order_type", "type", "tipo")), "DELIVERY"),
		SalesChannel: orDefault(upper(pickString(doc, "salesChannel", "sales_channel", "channel", "canal")), "MARKETPLACE"),
		OrderTiming:  orDefault(upper(pickString(doc, "orderTiming", "order_timing", "timing")), "ASAP"),
	}

	createdRaw, _ := pick(doc, "createdAt", "created_at", "data_criacao", "date")
	o.CreatedAt = toISO(createdRaw, now)
	if prepRaw, ok := pick(doc, "preparationStartDateTime", "preparation_start_date_time", "preparation_start"); ok {
		o.PreparationStartDateTime = toISO(prepRaw, now)
	} else {
		o.PreparationStartDateTime = o.CreatedAt
	}

	o.Merchant = normalizeMerchant(doc, d)
	o.Total = normalizeTotal(doc)
	o.Items = normalizeItems(doc)
	o.Payments = normalizePayments(doc, o.Total.OrderAmount)
	o.Customer = normalizeCustomer(doc, now)
	if o.OrderType == "DELIVERY" {
		o.Delivery = normalizeDelivery(doc, o.CreatedAt, now)
	}

	return o, nil
}

func normalizeMerchant(doc bundle.Document, d Defaults) Merchant {
	m, _ := asMap(firstOf(doc, "merchant", "estabelecimento", "store"))
	return Merchant{
		ID:   orDefault(pickString(m, "id", "merchant_id"), d.MerchantID),
		Name: orDefault(pickString(m, "name", "nome"), d.MerchantName),
	}
}

func normalizeTotal(doc bundle.Document) Total {
	var t Total
	raw, ok := pick(doc, "total", "totals", "valores")
	if m, isMap := asMap(raw); isMap {
		t.SubTotal = pickFloat(m, "subTotal", "sub_total", "subtotal")
		t.DeliveryFee = pickFloat(m, "deliveryFee", "delivery_fee", "taxa_entrega")
		t.OrderAmount = pickFloat(m, "orderAmount", "order_amount", "total", "valor_total")
		t.Benefits = pickFloat(m, "benefits", "discount", "desconto")
		t.AdditionalFees = pickFloat(m, "additionalFees", "additional_fees", "taxas")
	} else if ok {
		// Bare scalar total: treat as the order amount.
		t.OrderAmount = asFloat(raw)
	} else {
		// No compound field: legacy payloads keep amounts at the top level.
		t.SubTotal = pickFloat(doc, "subtotal", "sub_total", "subTotal")
		t.DeliveryFee = pickFloat(doc, "deliveryFee", "delivery_fee", "taxa_entrega")
		t.OrderAmount = pickFloat(doc, "total_amount", "valor_total")
		t.Benefits = pickFloat(doc, "discount", "desconto")
	}
	if t.OrderAmount == 0 {
		t.OrderAmount = t.SubTotal + t.DeliveryFee
	}
	return t
}

func normalizePayments(doc bundle.Document, orderAmount float64) Payments {
	var p Payments
	raw, _ := pick(doc, "payments", "payment", "pagamento")
	m, isMap := asMap(raw)
	if !isMap {
		// Missing or unusable: synthesize the default online payment.
		p.Methods = []PaymentMethod{{
			Method:   "ONLINE",
			Type:     "CREDIT",
			Currency: "BRL",
			Value:    orderAmount,
		}}
		p.Prepaid = orderAmount
		return p
	}

	for _, mv := range asList(firstOf(m, "methods", "method")) {
		mm, okM := asMap(mv)
		if !okM {
			// A bare number in the methods list is a value.
			if f := asFloat(mv); f > 0 {
				p.Methods = append(p.Methods, PaymentMethod{
					Method: "ONLINE", Type: "CREDIT", Currency: "BRL", Value: f,
				})
			}
			continue
		}
		p.Methods = append(p.Methods, PaymentMethod{
			Method:   orDefault(upper(pickString(mm, "method", "metodo")), "ONLINE"),
			Type:     orDefault(upper(pickString(mm, "type", "tipo")), "CREDIT"),
			Currency: orDefault(upper(pickString(mm, "currency", "moeda")), "BRL"),
			Value:    pickFloat(mm, "value", "valor", "total", "amount"),
		})
	}

	if len(p.Methods) == 0 {
		// Bare payment object, e.g. {"total": 30} or {"method": "PIX"}.
		value := pickFloat(m, "value", "valor", "total", "amount")
		if value == 0 {
			value = orderAmount
		}
		p.Methods = []PaymentMethod{{
			Method:   orDefault(upper(pickString(m, "method", "metodo")), "ONLINE"),
			Type:     orDefault(upper(pickString(m, "type", "tipo")), "CREDIT"),
			Currency: orDefault(upper(pickString(m, "currency", "moeda")), "BRL"),
			Value:    value,
		}}
	}

	p.Pending = pickFloat(m, "pending", "pendente")
	if pre, okPre := pick(m, "prepaid", "pre_pago"); okPre {
		p.Prepaid = asFloat(pre)
	} else {
		for _, pm := range p.Methods {
			p.Prepaid += pm.Value
		}
	}
	return p
}

func normalizeCustomer(doc bundle.Document, now time.Time) Customer {
	var c Customer
	raw, ok := pick(doc, "customer", "cliente", "client")
	if !ok {
		return c
	}
	m, isMap := asMap(raw)
	if !isMap {
		// Bare scalar customer: the value is a name.
		c.Name = asString(raw)
		return c
	}

	c.ID = pickString(m, "id", "customer_id")
	c.Name = pickString(m, "name", "nome")
	c.DocumentNumber = pickString(m, "documentNumber", "document_number", "document", "cpf")

	phoneRaw, okPhone := pick(m, "phone", "telefone", "phoneNumber", "phone_number")
	if !okPhone {
		return c
	}
	if pm, isPhoneMap := asMap(phoneRaw); isPhoneMap {
		c.Phone.Number = pickString(pm, "number", "numero", "phone")
		c.Phone.Localizer = pickString(pm, "localizer", "localizador")
		if exp, okExp := pick(pm, "localizerExpiration", "localizer_expiration"); okExp {
			c.Phone.LocalizerExpiration = toISO(exp, now)
		}
	} else {
		// Phone as a plain string wraps into {number: value}.
		c.Phone.Number = asString(phoneRaw)
	}
	return c
}

func normalizeDelivery(doc bundle.Document, createdAt string, now time.Time) *Delivery {
	m, _ := asMap(firstOf(doc, "delivery", "entrega"))

	d := &Delivery{
		Mode:        orDefault(upper(pickString(m, "mode", "modo")), "DEFAULT"),
		DeliveredBy: orDefault(upper(pickString(m, "deliveredBy", "delivered_by")), "MERCHANT"),
		PickupCode:  pickString(m, "pickupCode", "pickup_code"),
	}
	if dt, ok := pick(m, "deliveryDateTime", "delivery_date_time", "data_entrega"); ok {
		d.DeliveryDateTime = toISO(dt, now)
	} else {
		d.DeliveryDateTime = createdAt
	}

	addrRaw, ok := pick(m, "deliveryAddress", "delivery_address", "address", "endereco")
	if !ok {
		// Legacy payloads carry the address at the top level.
		addrRaw, _ = pick(doc, "deliveryAddress", "delivery_address", "address", "endereco")
	}
	am, _ := asMap(addrRaw)
	d.DeliveryAddress = normalizeAddress(am)
	return d
}

// normalizeAddress prefers the Consumer-shaped key when both spellings are
// present (streetName over street, postalCode over zip_code).
func normalizeAddress(m bundle.Document) Address {
	return Address{
		Country:      orDefault(upper(pickString(m, "country", "pais")), "BR"),
		State:        pickString(m, "state", "uf", "estado"),
		City:         pickString(m, "city", "cidade"),
		PostalCode:   pickString(m, "postalCode", "postal_code", "zip_code", "cep"),
		StreetName:   pickString(m, "streetName", "street_name", "street", "rua", "logradouro"),
		StreetNumber: pickString(m, "streetNumber", "street_number", "number", "numero"),
		Neighborhood: pickString(m, "neighborhood", "bairro"),
		Complement:   pickString(m, "complement", "complemento"),
		Reference:    pickString(m, "reference", "referencia"),
	}
}

func normalizeItems(doc bundle.Document) []Item {
	list := asList(firstOf(doc, "items", "itens", "products", "produtos"))
	items := make([]Item, 0, len(list))
	for _, iv := range list {
		m, ok := asMap(iv)
		if !ok {
			continue
		}
		it := Item{
			ID:           pickString(m, "id", "item_id"),
			ExternalCode: pickString(m, "externalCode", "external_code", "codigo"),
			Name:         pickString(m, "name", "nome", "description"),
			Quantity:     pickInt(m, "quantity", "qty", "quantidade"),
			UnitPrice:    pickFloat(m, "unitPrice", "unit_price", "price", "preco"),
			Observations: pickString(m, "observations", "notes", "observacao"),
		}
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		if it.UnitPrice < 0 {
			it.UnitPrice = 0
		}
		if tp, okTP := pick(m, "totalPrice", "total_price", "total"); okTP {
			it.TotalPrice = asFloat(tp)
		} else {
			it.TotalPrice = it.UnitPrice * float64(it.Quantity)
		}
		if it.TotalPrice < 0 {
			it.TotalPrice = 0
		}
		it.Options = normalizeOptions(m)
		items = append(items, it)
	}
	return items
}

func normalizeOptions(item bundle.Document) []Option {
	list := asList(firstOf(item, "options", "opcoes", "complementos", "subItems", "sub_items"))
	if len(list) == 0 {
		return nil
	}
	opts := make([]Option, 0, len(list))
	for _, ov := range list {
		m, ok := asMap(ov)
		if !ok {
			continue
		}
		op := Option{
			OptionID:        pickString(m, "optionId", "option_id", "id"),
			ExternalCode:    pickString(m, "externalCode", "external_code", "codigo"),
			Name:            pickString(m, "name", "nome"),
			OptionGroupID:   pickString(m, "optionGroupId", "option_group_id", "groupId", "group_id"),
			OptionGroupName: pickString(m, "optionGroupName", "option_group_name", "groupName", "group_name"),
			Quantity:        pickInt(m, "quantity", "qty", "quantidade"),
			UnitPrice:       pickFloat(m, "unitPrice", "unit_price", "price", "preco"),
		}
		if op.Quantity < 0 {
			op.Quantity = 0
		}
		if op.UnitPrice < 0 {
			op.UnitPrice = 0
		}
		opts = append(opts, op)
	}
	return opts
}

func firstOf(m bundle.Document, keys ...string) any {
	v, _ := pick(m, keys...)
	return v
}

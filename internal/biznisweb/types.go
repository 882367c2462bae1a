package biznisweb

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is one row of the order list operation. Orders are owned and mutated
// by the remote platform; this process only ever holds transient read-only
// copies.
type Order struct {
	ID       string      `json:"id"`
	OrderNum string      `json:"order_num"`
	PurDate  string      `json:"pur_date"`
	Status   OrderStatus `json:"status"`
	Customer Customer    `json:"customer"`
	Sum      Money       `json:"sum"`
	Items    []OrderItem `json:"items"`
}

// OrderDetail is the full single-order shape returned by the order detail
// operation.
type OrderDetail struct {
	ID              string      `json:"id"`
	OrderNum        string      `json:"order_num"`
	ExternalRef     string      `json:"external_ref"`
	PurDate         string      `json:"pur_date"`
	VarSymb         string      `json:"var_symb"`
	LastChange      string      `json:"last_change"`
	Status          OrderStatus `json:"status"`
	Customer        Customer    `json:"customer"`
	InvoiceAddress  *Address    `json:"invoice_address"`
	DeliveryAddress *Address    `json:"delivery_address"`
	Items           []OrderItem `json:"items"`
	Sum             Money       `json:"sum"`
}

// OrderStatus carries the platform's status id and display name. The display
// name is what the exclusion set matches against.
type OrderStatus struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// OrderItem is one line item of an order.
type OrderItem struct {
	Label    string      `json:"item_label"`
	EAN      string      `json:"ean,omitempty"`
	Quantity json.Number `json:"quantity"`
	TaxRate  json.Number `json:"tax_rate,omitempty"`
	Price    Money       `json:"price"`
}

// Address is a postal address block.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Money is a monetary value with its currency.
type Money struct {
	Value     Amount   `json:"value"`
	Formatted string   `json:"formatted,omitempty"`
	Currency  Currency `json:"currency"`
}

// Currency identifies a currency by ISO code, optionally with a symbol.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol,omitempty"`
}

// Amount is a numeric monetary value that the remote API serializes
// inconsistently: sometimes a JSON number, sometimes a string-encoded number.
// Both decode to the same Amount. A value that parses as neither is recorded
// as invalid instead of failing the whole response decode, so one malformed
// order cannot abort a page; consumers treat invalid amounts as zero.
type Amount struct {
	dec   decimal.Decimal
	valid bool
}

// NewAmount builds a valid Amount, mainly for tests and fixtures.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{dec: d, valid: true}
}

// Decimal returns the parsed value, zero when invalid.
func (a Amount) Decimal() decimal.Decimal {
	return a.dec
}

// Valid reports whether the raw value parsed as a number.
func (a Amount) Valid() bool {
	return a.valid
}

func (a Amount) String() string {
	if !a.valid {
		return "0"
	}
	return a.dec.String()
}

// UnmarshalJSON accepts a JSON number, a string-encoded number, or null.
// Anything else leaves the Amount invalid without returning an error.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = Amount{}
		return nil
	}
	s = strings.Trim(s, `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = Amount{dec: d, valid: true}
	return nil
}

// MarshalJSON emits the value as a plain JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("0"), nil
	}
	return []byte(a.dec.String()), nil
}

// CustomerKind tags the three customer variants the order schema unions.
type CustomerKind string

const (
	// CustomerCompany is a registered company account.
	CustomerCompany CustomerKind = "company"
	// CustomerPerson is a registered personal account.
	CustomerPerson CustomerKind = "person"
	// CustomerEmailOnly is an unauthenticated checkout identified only by
	// an email address.
	CustomerEmailOnly CustomerKind = "email"
)

// Customer is the order's customer, a tagged union of the three schema
// variants. Every variant exposes an email; the rest of the fields depend on
// Kind.
type Customer struct {
	Kind CustomerKind `json:"kind"`

	// Company variant.
	CompanyName string `json:"company_name,omitempty"`
	CompanyID   string `json:"company_id,omitempty"`
	VatID       string `json:"vat_id,omitempty"`

	// Person variant.
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`

	// Shared.
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// UnmarshalJSON decodes the flattened inline-fragment object the GraphQL
// response carries and derives the variant tag from the fields present.
func (c *Customer) UnmarshalJSON(data []byte) error {
	type raw struct {
		CompanyName string `json:"company_name"`
		CompanyID   string `json:"company_id"`
		VatID       string `json:"vat_id"`
		Name        string `json:"name"`
		Surname     string `json:"surname"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = Customer{
		CompanyName: r.CompanyName,
		CompanyID:   r.CompanyID,
		VatID:       r.VatID,
		Name:        r.Name,
		Surname:     r.Surname,
		Email:       r.Email,
		Phone:       r.Phone,
	}
	switch {
	case r.CompanyName != "":
		c.Kind = CustomerCompany
	case r.Name != "" || r.Surname != "":
		c.Kind = CustomerPerson
	default:
		c.Kind = CustomerEmailOnly
	}
	return nil
}

// DisplayName resolves the customer's display name: company name first, then
// "name surname", otherwise empty for email-only checkouts.
func (c Customer) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return strings.TrimSpace(c.Name + " " + c.Surname)
}

// OrderPage is one batch of the order list operation together with its
// pagination metadata. It only lives for the duration of one pagination loop.
type OrderPage struct {
	Orders   []Order  `json:"data"`
	PageInfo PageInfo `json:"pageInfo"`
}

// PageInfo is the remote API's cursor pagination envelope.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor"`
	TotalPages  int    `json:"totalPages"`
}

// ParseOrderDate parses a purchase date that may arrive as a plain date or a
// date-time in either "T" or space separated form, truncating at the first
// time separator.
func ParseOrderDate(s string) (time.Time, error) {
	datePart := s
	if i := strings.IndexAny(s, "T "); i >= 0 {
		datePart = s[:i]
	}
	return time.Parse("2006-01-02", datePart)
}

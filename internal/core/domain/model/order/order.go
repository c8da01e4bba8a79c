package order

import (
	"errors"
	"strings"

	"routing/internal/core/domain/model/kernel"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not
// created through the NewOrder factory method.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// ErrAddressIsRequired is returned when an order carries no usable address.
var ErrAddressIsRequired = errors.New("order address is required")

// Line is one order detail line: a quantity of an article with known
// per-unit mass and volume. Lines are immutable value objects.
type Line struct {
	quantity     int
	unitMassKg   float64
	unitVolumeM3 float64
}

// NewLine creates a detail line. Non-positive quantities and negative unit
// measures are accepted here and filtered out during demand computation,
// because the sync feed is allowed to deliver correction lines.
func NewLine(quantity int, unitMassKg float64, unitVolumeM3 float64) Line {
	return Line{
		quantity:     quantity,
		unitMassKg:   unitMassKg,
		unitVolumeM3: unitVolumeM3,
	}
}

// Quantity returns the line quantity.
func (l Line) Quantity() int {
	return l.quantity
}

// UnitMassKg returns the per-unit mass in kilograms.
func (l Line) UnitMassKg() float64 {
	return l.unitMassKg
}

// UnitVolumeM3 returns the per-unit volume in cubic meters.
func (l Line) UnitVolumeM3() float64 {
	return l.unitVolumeM3
}

// Demand is the aggregate capacity consumption an order contributes
// against its vehicle: total mass in kilograms and volume in cubic meters.
type Demand struct {
	MassKg   float64
	VolumeM3 float64
}

// Add returns the component-wise sum of two demands.
func (d Demand) Add(other Demand) Demand {
	return Demand{
		MassKg:   d.MassKg + other.MassKg,
		VolumeM3: d.VolumeM3 + other.VolumeM3,
	}
}

// Order is a delivery order as seen by the routing core: an identifier, the
// address to geocode, and the detail lines that determine capacity demand.
// Orders are read-only here; mutation belongs to the external sync.
type Order struct {
	id         kernel.UUID
	street     string
	city       string
	postalCode string
	country    string
	lines      []Line

	isConstructed bool
}

// NewOrder creates an order read model. The street is required; city,
// postal code, and country are optional refinements used to disambiguate
// geocoding. Lines may be empty (an order without demand still gets a stop).
func NewOrder(
	id kernel.UUID,
	street string,
	city string,
	postalCode string,
	country string,
	lines []Line,
) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(street) == "" {
		return nil, ErrAddressIsRequired
	}

	return &Order{
		id:            id,
		street:        street,
		city:          city,
		postalCode:    postalCode,
		country:       country,
		lines:         append([]Line(nil), lines...),
		isConstructed: true,
	}, nil
}

// Validate ensures the Order instance was constructed through NewOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Street returns the street line of the delivery address.
func (o *Order) Street() string {
	return o.street
}

// City returns the city of the delivery address.
func (o *Order) City() string {
	return o.city
}

// PostalCode returns the postal code of the delivery address.
func (o *Order) PostalCode() string {
	return o.postalCode
}

// Country returns the country of the delivery address.
func (o *Order) Country() string {
	return o.country
}

// Lines returns a copy of the order's detail lines.
func (o *Order) Lines() []Line {
	return append([]Line(nil), o.lines...)
}

// Address joins the non-empty address fields into the single string handed
// to the geocoder. The same joining rule feeds cache-key normalization, so
// identical addresses always hash identically.
func (o *Order) Address() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{o.street, o.postalCode, o.city, o.country} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Demand sums quantity × unit mass/volume across the detail lines.
// Lines with non-positive quantities are ignored.
func (o *Order) Demand() Demand {
	var d Demand
	for _, l := range o.lines {
		if l.quantity <= 0 {
			continue
		}
		d.MassKg += float64(l.quantity) * l.unitMassKg
		d.VolumeM3 += float64(l.quantity) * l.unitVolumeM3
	}
	return d
}

// Package order provides the read-mostly order model consumed by the
// routing core. Order lifecycle (creation, updates, archiving) is owned by
// the external ERP/WMS synchronization; this core only reads orders to
// geocode their addresses and to compute the capacity demand each order
// contributes against a vehicle.
//
// The package includes:
//   - Order: an order with its address fields and detail lines
//   - Line: one detail line (quantity × per-unit mass/volume)
//   - Demand: aggregate capacity consumption of an order (mass, volume)
//
// Key business rules:
//   - Demand sums quantity × unit mass/volume across detail lines
//   - Lines with non-positive quantities are ignored in demand computation
package order

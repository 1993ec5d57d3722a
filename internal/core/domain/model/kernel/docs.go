// Package kernel provides the shared value objects of the order engine:
//
//   - UUID: identifiers of orders, customers, vendors and delivery partners
//   - Location, Address: WGS84 points and immutable address snapshots
//   - Money: exact non-negative amounts (shopspring/decimal)
//   - Actor, Role: the authenticated caller supplied by the identity provider
//
// Value objects are immutable and must be created through their constructors;
// the zero values fail Validate.
package kernel

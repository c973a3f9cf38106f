// Package models defines the core domain models for the kiosk order engine.
//
// # Catalog models
//
// Catalog data is immutable reference data loaded once per session:
//   - MenuItem, Department: the sellable catalog, filtered by visibility
//   - ModifierGroup, ModifierGroupLink: modifier choices attached to items
//   - TaxRate, BusinessInfo: store-level reference data
//
// # Order models
//
//   - CartLine: a line in the active order, holding a MenuItem snapshot so a
//     mid-session catalog refresh never changes a price already in the cart
//   - LoyaltyProfile: an identified loyalty member
//   - TransactionRecord, TransItem: the frozen, immutable snapshot produced
//     at submission time; only the Uploaded flag ever changes afterwards
//
// # Design principles
//
//  1. Monetary values are fixed-point decimals (shopspring/decimal), never
//     floats, so the cent-truncation tax contract is exact.
//  2. Relationships use ID strings instead of pointers; modifier lines are
//     owned by value inside their parent's Modifiers slice.
//  3. JSON tags on transaction models match the upload wire format expected
//     by the transaction server.
package models

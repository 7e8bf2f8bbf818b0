// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - identity.go: users
// - catalog.go: products
// - partner.go: credit customers, charge events, suppliers
// - trade.go: sales, orders and purchase orders with their items
// - finance.go: cheques and credit payments
// - archive.go: archive snapshots and public id sequences
package models

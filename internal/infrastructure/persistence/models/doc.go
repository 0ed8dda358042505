// Package models holds the GORM row types behind the ledger tables and the
// conversions to and from domain aggregates. Domain types carry no ORM tags;
// every column, index and decimal precision is declared here and mirrored by
// the SQL migrations.
package models

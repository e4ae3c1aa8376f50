// Package models contains the GORM persistence models of the reconciler. Domain
// entities stay free of ORM tags; each model converts to and from its entity
// with ToDomain and a FromDomain constructor.
//
//   - base.go: shared id/timestamp/version/account columns
//   - fulfillment.go: marketplace orders
//   - advertising.go: campaigns and campaign metric days
//   - billing.go: billing period charges
package models

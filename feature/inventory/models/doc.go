// Package models defines the GORM model for inventory items and its conversion
// from imported fields.
package models

// Package database opens the inventory database and inspects its schema.
//
// # Connect
//
// Connect wraps GORM and picks the dialector from Config.Driver: MySQL in production,
// SQLite for local runs and tests. An in-memory SQLite database is pinned to a single
// connection.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns for either driver. MissingColumns compares
// them with the columns a model needs, which the inventory store uses to refuse to
// import into a table that does not match.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "inventory_items", []string{"sku", "name"})
package database

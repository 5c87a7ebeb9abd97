// Package inventory exposes bulk CSV imports of inventory items over HTTP.
//
// It wires the import engine in core/importer to a GORM-backed item store, keeps a
// registry of running and finished jobs, and uploads a CSV of row errors to object
// storage when a job ends with errors.
//
// # Routes
//
//	POST   /inventory/imports?mode=upsert   CSV body or multipart 'file'
//	POST   /inventory/imports/object        {"object": "uploads/items.csv", "mode": "create"}
//	GET    /inventory/imports
//	GET    /inventory/imports/:id
//	GET    /inventory/imports/:id/errors?limit=
//	POST   /inventory/imports/:id/pause
//	POST   /inventory/imports/:id/resume
//	POST   /inventory/imports/:id/cancel
//	DELETE /inventory/imports/:id
//	GET    /inventory/items/:sku
//	GET    /inventory/integrity             503 when the table or bucket is incomplete
//
// Unknown jobs and SKUs map to 404 and wrong job state to 409. Invalid input maps to 400.
package inventory

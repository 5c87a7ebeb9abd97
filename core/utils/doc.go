// Package utils provides loose type conversions shared by the inventory store and the
// error report writer.
package utils

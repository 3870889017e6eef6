// Package types defines the catalog data model shared by the scanner and the
// runtime reader: attribute values, catalog records, marker descriptors,
// configuration and the standard errors.
package types

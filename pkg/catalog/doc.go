// Package catalog reads catalog partitions at run time.
//
// A marker is a struct type that embeds the Indexable meta-marker as a blank
// field:
//
//	type MenuItem struct {
//		_ catalog.Indexable `targets:"type,func" bound:"example.com/app/api.Action"`
//
//		Title  string
//		Weight int `default:"100"`
//	}
//
// Load returns an Index over every element recorded for the marker in a
// Scope. Iteration opens one partition at a time and yields each element
// identity once, preferring the first container in scope order. Items expose
// attribute values through a Proxy without touching the marked code; only
// Item.Element and Item.Instance go through the loader.
package catalog

// Indexable is the meta-marker. A struct type with a blank field of this
// type is an indexable marker. The field's tags declare where the marker may
// be applied:
//
//	targets    comma-separated list of type, func and var (required)
//	bound      qualified name of a type every instance must be assignable to
//	inherited  must not be "true"; markers cannot propagate to other types
type Indexable struct{}

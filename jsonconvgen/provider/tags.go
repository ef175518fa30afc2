// Package provider builds type descriptor schemas from Go types loaded at
// run time, from Go source, or from a YAML schema file.
package provider

import (
	"reflect"
	"strings"
)

// fieldTags holds what a struct field's tags say about its property.
type fieldTags struct {
	wire     string // JSON name; empty means the field name
	skip     bool
	readOnly bool
	char     bool
}

// parseFieldTags reads the json and jsonconv keys of a struct tag.
//
//	Name    string `json:"name"`
//	Created time.Time `jsonconv:"readonly"`
//	Grade   rune      `jsonconv:"char"`
func parseFieldTags(tag reflect.StructTag) fieldTags {
	var ft fieldTags
	if js, ok := tag.Lookup("json"); ok {
		name, _, hasOpts := strings.Cut(js, ",")
		if name == "-" && !hasOpts {
			ft.skip = true
			return ft
		}
		ft.wire = name
	}
	for _, opt := range strings.Split(tag.Get("jsonconv"), ",") {
		switch strings.TrimSpace(opt) {
		case "-":
			ft.skip = true
		case "readonly":
			ft.readOnly = true
		case "char":
			ft.char = true
		}
	}
	return ft
}

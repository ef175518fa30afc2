// Package testfixtures provides types used for testing the jsonconvgen package.
package testfixtures

import "time"

// Item is a test fixture for generator tests.
type Item struct {
	Name string `json:"name"`
	Qty  int
}

// Order is a test fixture for generator tests.
type Order struct {
	ID    string
	Items []*Item
	Notes map[string]string
}

// Lookup holds a map shape the generator has no routines for.
type Lookup struct {
	ByID map[int]string
}

// Event is a test fixture covering scalar kinds.
type Event struct {
	At      time.Time     `json:"at"`
	Timeout time.Duration `json:"timeout"`
	Level   int8          `json:"level"`
	Mark    rune          `json:"mark" jsonconv:"char"`
	Payload []byte        `json:"payload"`
	Seen    bool          `json:"seen" jsonconv:"readonly"`
}

// Tree is a recursive test fixture.
type Tree struct {
	Value    float64
	Children []*Tree
}

// Path is the import path of this package.
const Path = "github.com/broady/jsonconv/internal/testfixtures"

// Package testdata holds types loaded by the source provider tests.
package testdata

import "time"

// UserID identifies a user.
type UserID string

// Level is a small defined integer.
type Level int8

// Address is a postal address.
type Address struct {
	City string `json:"city"`
	Zip  string `json:"zip"`
}

// User is an account holder.
//
// Users own many things.
type User struct {
	// ID is the primary key.
	ID       UserID `json:"id"`
	Name     string
	Initial  rune
	Grade    int32 `jsonconv:"char"`
	Level    Level
	Home     Address
	Work     *Address
	Previous []*Address
	Tags     map[string]string
	Scores   [3]float32
	Avatar   []byte
	Joined   time.Time `jsonconv:"readonly"`
	Timeout  time.Duration
	Secret   string `json:"-"`
	internal int

	Audit
}

// Audit is embedded into User.
type Audit struct {
	CreatedBy string `json:"created_by"`
}

// Node is self-referential.
type Node struct {
	Value    int
	Next     *Node
	Children []*Node
}

// Bad holds a collection of struct values.
type Bad struct {
	Items []Address
}

// Lookup has a map with non-string keys.
type Lookup struct {
	ByID map[int]string
}

// Names is a defined list type.
type Names []string

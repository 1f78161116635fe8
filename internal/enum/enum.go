// Package enum provides declarative, case-insensitive lookup tables for
// the string options accepted on the wire.
package enum

import (
	"fmt"
	"slices"
	"strings"
)

type Table[T comparable] struct {
	name   string
	byName map[string]T
	names  map[T]string
	order  []string
}

type Entry[T comparable] struct {
	Name  string
	Value T
}

func E[T comparable](name string, v T) Entry[T] {
	return Entry[T]{Name: name, Value: v}
}

// New builds a table. The first entry listed for a value is its
// canonical name.
func New[T comparable](name string, entries ...Entry[T]) *Table[T] {
	t := &Table[T]{
		name:   name,
		byName: make(map[string]T, len(entries)),
		names:  make(map[T]string, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		if _, dup := t.byName[key]; dup {
			panic(fmt.Sprintf("enum %s: duplicate name %q", name, e.Name))
		}
		t.byName[key] = e.Value
		if _, ok := t.names[e.Value]; !ok {
			t.names[e.Value] = e.Name
			t.order = append(t.order, e.Name)
		}
	}
	return t
}

func (t *Table[T]) Lookup(s string) (T, bool) {
	v, ok := t.byName[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

func (t *Table[T]) Parse(s string) (T, error) {
	v, ok := t.Lookup(s)
	if !ok {
		return v, &UnknownError{Enum: t.name, Input: s, Allowed: t.Names()}
	}
	return v, nil
}

// Or returns def when s names no entry.
func (t *Table[T]) Or(s string, def T) T {
	if v, ok := t.Lookup(s); ok {
		return v
	}
	return def
}

func (t *Table[T]) Name(v T) string {
	return t.names[v]
}

func (t *Table[T]) Names() []string {
	return slices.Clone(t.order)
}

type UnknownError struct {
	Enum    string
	Input   string
	Allowed []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Enum, e.Input, strings.Join(e.Allowed, ", "))
}

package enum

import (
	"errors"
	"strings"
	"testing"
)

type color int

const (
	red color = iota
	green
)

var colors = New("color",
	E("red", red),
	E("green", green),
	E("verde", green),
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	for _, in := range []string{"red", "RED", " Red "} {
		if v, ok := colors.Lookup(in); !ok || v != red {
			t.Errorf("Lookup(%q) = %v %v", in, v, ok)
		}
	}
	if v := colors.Or("VERDE", red); v != green {
		t.Errorf("alias = %v", v)
	}
	if v := colors.Or("blue", green); v != green {
		t.Errorf("fallback = %v", v)
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := colors.Parse("blue")
	var ue *UnknownError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), `invalid color "blue"`) || !strings.Contains(err.Error(), "red, green") {
		t.Errorf("message = %s", err)
	}
}

func TestCanonicalName(t *testing.T) {
	if colors.Name(green) != "green" {
		t.Errorf("Name(green) = %q", colors.Name(green))
	}
	names := colors.Names()
	names[0] = "mutated"
	if colors.Names()[0] != "red" {
		t.Error("Names must return a copy")
	}
}

func TestDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate name did not panic")
		}
	}()
	New("dup", E("a", 1), E("A", 2))
}

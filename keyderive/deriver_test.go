package keyderive_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/karupanerura/named-cache/keyderive"
)

type point struct {
	X, Y int
}

func TestDeriver_DeriveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typeName string
		method   string
		args     []any
		want     string
	}{
		{name: "no args", typeName: "example.com/app.Repo", method: "All", want: "example.com/app.Repo.All()"},
		{name: "no type", method: "All", want: "All()"},
		{name: "string", typeName: "Repo", method: "ByName", args: []any{`a"b`}, want: `Repo.ByName("a\"b")`},
		{name: "scalars", typeName: "Repo", method: "Page", args: []any{1, uint8(2), true, 1.5, nil}, want: "Repo.Page(1,2,true,1.5,nil)"},
		{name: "named scalar", typeName: "Repo", method: "ByID", args: []any{userID(3)}, want: "Repo.ByID(3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := keyderive.Default.DeriveKey(tt.typeName, tt.method, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DeriveKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

type userID int64

func TestDeriver_DeriveKey_Composite(t *testing.T) {
	t.Parallel()

	derive := func(args ...any) string {
		t.Helper()
		key, err := keyderive.Default.DeriveKey("Repo", "Find", args)
		if err != nil {
			t.Fatal(err)
		}
		return key
	}

	a := derive(point{X: 1, Y: 2})
	if !strings.HasPrefix(a, "Repo.Find(#") || len(a) != len("Repo.Find(#)")+16 {
		t.Errorf("unexpected key shape %q", a)
	}
	if b := derive(point{X: 1, Y: 2}); a != b {
		t.Errorf("equal values derived different keys: %q != %q", a, b)
	}
	if b := derive(point{X: 2, Y: 1}); a == b {
		t.Errorf("different values derived the same key %q", a)
	}

	// map iteration order must not matter
	m1 := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
	m2 := map[string]int{"d": 4, "c": 3, "b": 2, "a": 1}
	for range 10 {
		if derive(m1) != derive(m2) {
			t.Fatal("equal maps derived different keys")
		}
	}

	if derive([]int{1, 2}) == derive([]int{2, 1}) {
		t.Error("slices in a different order must derive different keys")
	}
}

func TestDeriver_DeriveKey_Errors(t *testing.T) {
	t.Parallel()

	if _, err := keyderive.Default.DeriveKey("Repo", "", nil); err == nil {
		t.Error("empty method must fail")
	}

	_, err := keyderive.Default.DeriveKey("Repo", "Find", []any{func() {}})
	if !errors.Is(err, keyderive.ErrUnsupportedArg) {
		t.Errorf("err = %v, want ErrUnsupportedArg", err)
	}

	_, err = keyderive.Default.DeriveKey("Repo", "Find", []any{make(chan int)})
	if !errors.Is(err, keyderive.ErrUnsupportedArg) {
		t.Errorf("err = %v, want ErrUnsupportedArg", err)
	}
}

package clipboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCopy(t *testing.T) {
	var copied string
	c := NewCopier(func(s string) error { copied = s; return nil }, zerolog.Nop())

	if !c.Copy("SAVE20") {
		t.Fatal("Copy returned false")
	}
	if copied != "SAVE20" {
		t.Fatalf("copied %q", copied)
	}
}

func TestCopyFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	c := NewCopier(func(string) error { return errors.New("no xclip") }, zerolog.New(&buf))

	if c.Copy("SAVE20") {
		t.Fatal("Copy returned true on failure")
	}
	if !strings.Contains(buf.String(), "no xclip") {
		t.Fatalf("error not logged: %s", buf.String())
	}
}

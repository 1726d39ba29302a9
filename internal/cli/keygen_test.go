package cli

import (
	"bytes"
	"context"
	"crypto/rand"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(rand.Reader, 500)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(key) != 500 {
		t.Fatalf("expected 500 symbols, got %d", len(key))
	}
	if strings.Trim(key, keySymbols) != "" {
		t.Fatalf("key contains symbols outside A-Z and @: %q", key)
	}

	if _, err := GenerateKey(rand.Reader, 0); err == nil {
		t.Fatal("expected an error for a zero length key")
	}
}

func TestKeygenCommand(t *testing.T) {
	cmd := NewKeygenCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"12"})

	if code := Execute(context.Background(), cmd); code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut.String())
	}
	if !strings.HasSuffix(out.String(), "\n") || len(out.String()) != 13 {
		t.Fatalf("expected 12 symbols and a newline, got %q", out.String())
	}
}

func TestKeygenRejectsBadLength(t *testing.T) {
	for _, arg := range []string{"0", "ten"} {
		cmd := NewKeygenCommand()
		var out, errOut bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{arg})

		if code := Execute(context.Background(), cmd); code != ExitFailure {
			t.Fatalf("%s: expected exit 1, got %d", arg, code)
		}
		if out.Len() != 0 {
			t.Fatalf("%s: expected no key output, got %q", arg, out.String())
		}
		if !strings.Contains(errOut.String(), "valid number") {
			t.Fatalf("%s: unexpected error output %q", arg, errOut.String())
		}
	}
}

package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "store error",
			code:    "S002",
			wantMsg: "Refusing to override existing value with initialization data",
			wantCat: CategoryStore,
		},
		{
			name:    "binding error",
			code:    "B001",
			wantMsg: "Refusing to overwrite store props with parent-injected props",
			wantCat: CategoryBinding,
		},
		{
			name:    "config error",
			code:    "C001",
			wantMsg: "Invalid seed file",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "S999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestReport_Error(t *testing.T) {
	if got, want := New("S001").Error(), "S001: Invalid store key"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := Newf(CategoryConfig, "bad %s", "port").Error(); got != "bad port" {
		t.Errorf("Error() = %q, want %q", got, "bad port")
	}
}

type describedError struct{}

func (describedError) Error() string { return "described" }

func (describedError) Report() *Report {
	return New("B003").WithDetail("setCount")
}

func TestFromError(t *testing.T) {
	if FromError(nil, "S001") != nil {
		t.Error("FromError(nil) should be nil")
	}

	rep := FromError(fmt.Errorf("mounting: %w", describedError{}), "C002")
	if rep.Code != "B003" {
		t.Errorf("Code = %q, want B003", rep.Code)
	}
	if rep.Detail != "setCount" {
		t.Errorf("Detail = %q, want setCount", rep.Detail)
	}

	plain := fmt.Errorf("boom")
	rep = FromError(plain, "C002")
	if rep.Code != "C002" || rep.Unwrap() != plain {
		t.Errorf("FromError(plain) = %+v", rep)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("S002").WithDetail(`key "count" already holds 1`).Format()
	for _, want := range []string{
		"ERROR S002: Refusing to override existing value",
		`key "count" already holds 1`,
		"Hint: Create the key without an initialization value",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, fmt.Errorf("plain failure"))
	if got := buf.String(); got != "ERROR: plain failure\n" {
		t.Errorf("Print() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/facturacom/webrouter/pkg/routepath"
	"github.com/facturacom/webrouter/pkg/router"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("E200")
	if err.Code != "E200" {
		t.Errorf("Code = %q, want E200", err.Code)
	}
	if err.Category != CategoryRouting {
		t.Errorf("Category = %q, want %q", err.Category, CategoryRouting)
	}
	if err.Message != "No matching route" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want 404", err.Status())
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("E999")
	if err.Message != "Unknown error" {
		t.Errorf("Message = %q, want Unknown error", err.Message)
	}
	if err.Status() != http.StatusInternalServerError {
		t.Errorf("Status() = %d, want 500", err.Status())
	}
}

func TestErrorString(t *testing.T) {
	err := New("E141")
	if got := err.Error(); got != "E141: Configuration file not found" {
		t.Errorf("Error() = %q", got)
	}

	err = New("E142").Wrap(fmt.Errorf("open routes.yaml: no such file"))
	if !strings.HasSuffix(err.Error(), ": open routes.yaml: no such file") {
		t.Errorf("Error() = %q, want wrapped cause appended", err.Error())
	}

	plain := Newf(CategoryCLI, "bad flag %q", "--x")
	if plain.Error() != `bad flag "--x"` {
		t.Errorf("Newf Error() = %q", plain.Error())
	}
}

func TestFluentBuilders(t *testing.T) {
	err := New("E140").
		WithDetail("port must be between 0 and 65535").
		WithSuggestion("Use a port such as 8080")

	if err.Detail != "port must be between 0 and 65535" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "Use a port such as 8080" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestClassify(t *testing.T) {
	table, buildErr := router.NewBuilder().Route("/show/:uuid", "Show", "Show").Build()
	if buildErr != nil {
		t.Fatal(buildErr)
	}
	_, noMatch := table.Resolve("/unknown")
	_, badPath := table.Resolve("/../etc")
	_, unknown := table.URL("Nope", nil)
	_, missing := table.URL("Show", nil)

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no match", noMatch, "E200"},
		{"invalid route", fmt.Errorf("load: %w", router.ErrInvalidRoute), "E201"},
		{"unknown route", unknown, "E202"},
		{"bad path", badPath, "E203"},
		{"encoded slash", routepath.ErrEncodedSlashInSegment, "E203"},
		{"missing param", missing, "E204"},
		{"aborted", router.Abort("nope"), "E205"},
		{"other", stderrors.New("boom"), "E500"},
		{"already coded", New("E141"), "E141"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.code {
				t.Errorf("Classify(%v).Code = %q, want %q", tt.err, got.Code, tt.code)
			}
			if tt.code != "E141" && !stderrors.Is(got, tt.err) {
				t.Errorf("classified error should wrap the original")
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E500") != nil {
		t.Error("FromError(nil) should be nil")
	}

	base := stderrors.New("disk full")
	err := FromError(base, "E142")
	if err.Code != "E142" || !stderrors.Is(err, base) {
		t.Errorf("FromError = %+v", err)
	}

	wrapped := fmt.Errorf("serve: %w", New("E141"))
	if got := FromError(wrapped, "E500"); got.Code != "E141" {
		t.Errorf("FromError should keep existing code, got %q", got.Code)
	}
	if Code(wrapped) != "E141" {
		t.Errorf("Code(wrapped) = %q, want E141", Code(wrapped))
	}
	if Code(base) != "" {
		t.Errorf("Code(base) = %q, want empty", Code(base))
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E141").
		WithDetail("No webrouter.json found in /srv/app").
		WithSuggestion("Pass --config")

	out := err.Format()
	for _, want := range []string{
		"ERROR E141: Configuration file not found",
		"No webrouter.json found in /srv/app",
		"Hint: Pass --config",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "http") {
		t.Errorf("Format() should not link to external pages:\n%s", out)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E200").Wrap(stderrors.New(`no matching route for "/unknown"`))

	var body Body
	if decodeErr := json.Unmarshal([]byte(err.FormatJSON()), &body); decodeErr != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", decodeErr)
	}
	if body.Code != "E200" || body.Category != CategoryRouting {
		t.Errorf("body = %+v", body)
	}
	if body.Cause != `no matching route for "/unknown"` {
		t.Errorf("Cause = %q", body.Cause)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %q longer than 20", line)
		}
	}
	if wrapText("", 20) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistryCodesHaveMessages(t *testing.T) {
	for _, code := range Codes() {
		tmpl, ok := Lookup(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template: %+v", code, tmpl)
		}
	}
}

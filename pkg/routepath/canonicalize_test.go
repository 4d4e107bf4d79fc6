package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantChanged bool
		wantErr     error
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "home", wantPath: "/home", wantChanged: true},
		{name: "trailing slash", input: "/home/", wantPath: "/home", wantChanged: true},
		{name: "collapse slashes", input: "/show//9f3c", wantPath: "/show/9f3c", wantChanged: true},
		{name: "single dot", input: "/show/./9f3c", wantPath: "/show/9f3c", wantChanged: true},
		{name: "double dot", input: "/show/9f3c/../abc", wantPath: "/show/abc", wantChanged: true},
		{name: "double dot to root", input: "/home/../", wantPath: "/", wantChanged: true},
		{name: "query preserved", input: "/show/9f3c?tab=pdf", wantPath: "/show/9f3c", wantQuery: "tab=pdf"},
		{name: "fragment dropped", input: "/create#items", wantPath: "/create"},
		{name: "query escapes not validated", input: "/create?bad=%GG", wantPath: "/create", wantQuery: "bad=%GG"},
		{name: "valid escape kept", input: "/show/a%20b", wantPath: "/show/a%20b"},
		{name: "backslash", input: "/show\\abc", wantErr: ErrBackslashInPath},
		{name: "literal nul", input: "/show/\x00", wantErr: ErrNullByteInPath},
		{name: "encoded nul", input: "/show/%00", wantErr: ErrNullByteInPath},
		{name: "bad escape", input: "/show/%GG", wantErr: ErrInvalidPercentEscape},
		{name: "truncated escape", input: "/show/%2", wantErr: ErrInvalidPercentEscape},
		{name: "escapes root", input: "/../secret", wantErr: ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalizePath(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CanonicalizePath(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalizePath(%q) unexpected error: %v", tt.input, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tt.wantQuery)
			}
			if got.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.wantChanged)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/home", []string{"home"}},
		{"/show/9f3c", []string{"show", "9f3c"}},
	}

	for _, tt := range tests {
		if got := Segments(tt.path); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDecodeSegment(t *testing.T) {
	got, err := DecodeSegment("a%20b", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a b" {
		t.Errorf("DecodeSegment = %q, want %q", got, "a b")
	}

	if _, err := DecodeSegment("a%2Fb", false); !errors.Is(err, ErrEncodedSlashInSegment) {
		t.Errorf("expected ErrEncodedSlashInSegment, got %v", err)
	}

	got, err = DecodeSegment("a%2Fb", true)
	if err != nil {
		t.Fatalf("catch-all decode error: %v", err)
	}
	if got != "a/b" {
		t.Errorf("catch-all DecodeSegment = %q, want %q", got, "a/b")
	}
}

func TestEscapeSegmentRoundTrip(t *testing.T) {
	for _, v := range []string{"9f3c", "a b", "ñandú", "x?y"} {
		decoded, err := DecodeSegment(EscapeSegment(v), false)
		if err != nil {
			t.Fatalf("DecodeSegment(EscapeSegment(%q)) error: %v", v, err)
		}
		if decoded != v {
			t.Errorf("round trip = %q, want %q", decoded, v)
		}
	}
}

func TestCanonicalizeAndValidateNavPath(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"/home", "/home", false},
		{"/show//abc/?x=1", "/show/abc?x=1", false},
		{"http://evil.example/home", "", true},
		{"https://evil.example", "", true},
		{"//evil.example", "", true},
		{"home", "", true},
		{"/../etc", "", true},
	}

	for _, tt := range tests {
		got, err := CanonicalizeAndValidateNavPath(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("CanonicalizeAndValidateNavPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalizeAndValidateNavPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

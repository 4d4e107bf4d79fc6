package routesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/facturacom/webrouter/internal/errors"
)

func TestDecodeFixtures(t *testing.T) {
	tests := []struct {
		file    string
		version string
		routes  int
	}{
		{"routes_v1.yaml", "1", 1},
		{"routes_v2.json", "2", 2},
		{"routes_v3.toml", "3", 3},
		{"routes_v4.yaml", "4", 3},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatal(err)
			}
			format, err := FormatFromPath(tt.file)
			if err != nil {
				t.Fatalf("FormatFromPath: %v", err)
			}
			doc, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if doc.Version != tt.version {
				t.Errorf("Version = %q, want %q", doc.Version, tt.version)
			}
			table, err := doc.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if table.Len() != tt.routes {
				t.Errorf("Len() = %d, want %d", table.Len(), tt.routes)
			}

			m, err := table.Resolve("/")
			if err != nil {
				t.Fatalf("Resolve(/): %v", err)
			}
			if m.Route.Name() != "Home" {
				t.Errorf("/ resolved to %q, want Home", m.Route.Name())
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"routes.yaml":         FormatYAML,
		"ROUTES.YML":          FormatYAML,
		"config/routes.toml":  FormatTOML,
		"prod/v4/routes.json": FormatJSON,
	}
	for name, want := range tests {
		got, err := FormatFromPath(name)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", name, got, err, want)
		}
	}

	if _, err := FormatFromPath("routes.ini"); errors.Code(err) != "E143" {
		t.Errorf("FormatFromPath(routes.ini) error = %v, want E143", err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "unknown_field.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data, FormatYAML); errors.Code(err) != "E142" {
		t.Errorf("Decode error = %v, want E142", err)
	}

	if _, err := Decode([]byte(`{"version":"1","routes":[],"extra":true}`), FormatJSON); errors.Code(err) != "E142" {
		t.Errorf("JSON decode error = %v, want E142", err)
	}
	if _, err := Decode([]byte("version = \"1\"\nextra = 1\n"), FormatTOML); errors.Code(err) != "E142" {
		t.Errorf("TOML decode error = %v, want E142", err)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode([]byte("x"), Format("ini")); errors.Code(err) != "E143" {
		t.Errorf("error = %v, want E143", err)
	}
}

func TestBuildInvalidDocument(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "duplicate_name.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Decode(data, FormatYAML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := doc.Build(); errors.Code(err) != "E201" {
		t.Errorf("Build error = %v, want E201", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	table, err := BuiltinTable()
	if err != nil {
		t.Fatalf("BuiltinTable: %v", err)
	}

	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(FromTable(table), format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			doc, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, data)
			}
			rebuilt, err := doc.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			if rebuilt.Version() != "4" || rebuilt.DefaultTitle() != "Factura.com" {
				t.Errorf("rebuilt version=%q title=%q", rebuilt.Version(), rebuilt.DefaultTitle())
			}
			m, err := rebuilt.Resolve("/show/8f14e45f-ceea-467f-a0e6-3b2f6c6b1a2d")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := rebuilt.Title(m.Event()); got != "Show - Factura.com" {
				t.Errorf("Title = %q, want Show - Factura.com", got)
			}
		})
	}
}

func TestBuiltinTable(t *testing.T) {
	table, err := BuiltinTable()
	if err != nil {
		t.Fatalf("BuiltinTable: %v", err)
	}

	names := []string{"Home", "Create", "Show"}
	routes := table.Routes()
	if len(routes) != len(names) {
		t.Fatalf("len(Routes()) = %d, want %d", len(routes), len(names))
	}
	for i, def := range routes {
		if def.Name() != names[i] {
			t.Errorf("route %d = %q, want %q", i, def.Name(), names[i])
		}
	}

	if target, ok := table.RedirectTarget("/"); !ok || target != "/home" {
		t.Errorf("RedirectTarget(/) = %q, %v; want /home", target, ok)
	}
}

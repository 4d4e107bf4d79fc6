package router

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

func TestTableURL(t *testing.T) {
	table, err := NewBuilder().
		Route("/", "Root", "Root").
		Route("/home", "Home", "Home").
		Route("/show/:uuid", "Show", "Show").
		Route("/cfdi/:id:uuid", "Cfdi", "Cfdi").
		Route("/files/*path", "Files", "Files").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		route   string
		params  map[string]string
		want    string
		wantErr error
	}{
		{name: "root", route: "Root", want: "/"},
		{name: "static", route: "Home", want: "/home"},
		{name: "param", route: "Show", params: map[string]string{"uuid": "9f3c"}, want: "/show/9f3c"},
		{name: "escaped param", route: "Show", params: map[string]string{"uuid": "a b?c"}, want: "/show/a%20b%3Fc"},
		{name: "slash in param", route: "Show", params: map[string]string{"uuid": "a/b"}, wantErr: ErrInvalidParam},
		{name: "dot param", route: "Show", params: map[string]string{"uuid": "."}, wantErr: ErrInvalidParam},
		{name: "dot-dot param", route: "Show", params: map[string]string{"uuid": ".."}, wantErr: ErrInvalidParam},
		{name: "dot-dot in catch-all", route: "Files", params: map[string]string{"path": "2024/../secret"}, wantErr: ErrInvalidParam},
		{name: "empty catch-all segment", route: "Files", params: map[string]string{"path": "2024//enero.xml"}, wantErr: ErrInvalidParam},
		{name: "extra params ignored", route: "Show", params: map[string]string{"uuid": "x", "tab": "pdf"}, want: "/show/x"},
		{name: "catch-all", route: "Files", params: map[string]string{"path": "2024/enero.xml"}, want: "/files/2024/enero.xml"},
		{name: "missing param", route: "Show", wantErr: ErrInvalidParam},
		{name: "empty param", route: "Show", params: map[string]string{"uuid": ""}, wantErr: ErrInvalidParam},
		{name: "typed param invalid", route: "Cfdi", params: map[string]string{"id": "9f3c"}, wantErr: ErrInvalidParam},
		{name: "unknown route", route: "Nope", wantErr: ErrUnknownRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.URL(tt.route, tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("URL error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("URL error: %v", err)
			}
			if got != tt.want {
				t.Errorf("URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTableURLResolvesBack(t *testing.T) {
	table := facturaTable(t, 4)

	for _, value := range []string{"9f3c", "a b", "ñ-1", "v1.2", "...", "a?b#c"} {
		path, err := table.URL("Show", map[string]string{"uuid": value})
		if err != nil {
			t.Fatal(err)
		}
		m, err := table.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", path, err)
		}
		if m.Params["uuid"] != value {
			t.Errorf("round trip uuid = %q, want %q", m.Params["uuid"], value)
		}
	}
}

func TestTableURLRejectsUnresolvableValues(t *testing.T) {
	table := facturaTable(t, 4)

	for _, value := range []string{"..", ".", "a/b"} {
		path, err := table.URL("Show", map[string]string{"uuid": value})
		if !errors.Is(err, ErrInvalidParam) {
			t.Errorf("URL(Show, uuid=%q) = %q, %v; want ErrInvalidParam", value, path, err)
		}

		_, err = NewNavigator(table).NavigateTo(context.Background(), "Show", map[string]string{"uuid": value})
		if !errors.Is(err, ErrInvalidParam) {
			t.Errorf("NavigateTo(Show, uuid=%q) error = %v, want ErrInvalidParam", value, err)
		}
	}
}

func TestTableURLWithQuery(t *testing.T) {
	table := facturaTable(t, 4)

	got, err := table.URLWithQuery("Home", nil, url.Values{"page": {"2"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "/home?page=2" {
		t.Errorf("URLWithQuery = %q, want /home?page=2", got)
	}
}

package routesource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/router"
)

// Format is a route document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Document is the serialized form of a route table.
type Document struct {
	// Version labels the table (e.g., "4").
	Version string `json:"version" yaml:"version" toml:"version"`

	// DefaultTitle is used for routes without title metadata.
	DefaultTitle string `json:"defaultTitle,omitempty" yaml:"defaultTitle,omitempty" toml:"defaultTitle,omitempty"`

	// Redirects are applied before matching.
	Redirects []router.Redirect `json:"redirects,omitempty" yaml:"redirects,omitempty" toml:"redirects,omitempty"`

	// Routes are matched in order.
	Routes []router.Route `json:"routes" yaml:"routes" toml:"routes"`
}

// FormatFromPath picks the format from a file name or object key.
func FormatFromPath(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New("E143").WithDetail("Cannot tell the format of " + name)
	}
}

// Decode parses a route document. Unknown fields are rejected.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.New("E142").WithDetail("Invalid YAML route document").Wrap(err)
		}

	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.New("E142").WithDetail("Invalid TOML route document").Wrap(err)
		}

	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.New("E142").WithDetail("Invalid JSON route document").Wrap(err)
		}

	default:
		return nil, errors.New("E143").WithDetail(fmt.Sprintf("Unknown format %q", format))
	}

	return &doc, nil
}

// Encode serializes a document in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.New("E143").WithDetail(fmt.Sprintf("Unknown format %q", format))
	}
}

// Build compiles the document into a route table.
func (d *Document) Build() (*router.Table, error) {
	opts := []router.TableOption{router.WithVersion(d.Version)}
	if d.DefaultTitle != "" {
		opts = append(opts, router.WithDefaultTitle(d.DefaultTitle))
	}

	table, err := router.NewTable(d.Routes, d.Redirects, opts...)
	if err != nil {
		return nil, errors.New("E201").Wrap(err)
	}
	return table, nil
}

// FromTable converts a table back into a document.
func FromTable(t *router.Table) *Document {
	doc := &Document{
		Version:      t.Version(),
		DefaultTitle: t.DefaultTitle(),
		Redirects:    t.Redirects(),
	}
	for _, def := range t.Routes() {
		doc.Routes = append(doc.Routes, def.Spec())
	}
	return doc
}

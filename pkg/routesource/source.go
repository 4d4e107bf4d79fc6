package routesource

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"strings"

	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/router"
)

// Builtin is the source name of the route table compiled into the binary.
const Builtin = "builtin"

//go:embed builtin.yaml
var builtinDocument []byte

// BuiltinDocument returns the embedded Factura.com route document.
func BuiltinDocument() (*Document, error) {
	return Decode(builtinDocument, FormatYAML)
}

// BuiltinTable returns the embedded Factura.com route table.
func BuiltinTable() (*router.Table, error) {
	doc, err := BuiltinDocument()
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// Loader reads route documents from files, S3 or the builtin table.
type Loader struct {
	// S3 fetches objects for s3:// sources. Required only for those sources.
	S3 ObjectGetter

	// Logger receives load diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(s3 ObjectGetter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{S3: s3, Logger: logger}
}

// Kind classifies a source string.
type Kind int

const (
	KindFile Kind = iota
	KindS3
	KindBuiltin
)

// KindOf returns the kind of a source string.
func KindOf(source string) Kind {
	switch {
	case source == "" || source == Builtin:
		return KindBuiltin
	case strings.HasPrefix(source, "s3://"):
		return KindS3
	default:
		return KindFile
	}
}

// LoadDocument reads and decodes the document at source.
func (l *Loader) LoadDocument(ctx context.Context, source string) (*Document, error) {
	switch KindOf(source) {
	case KindBuiltin:
		return BuiltinDocument()

	case KindS3:
		bucket, key, err := ParseS3URL(source)
		if err != nil {
			return nil, err
		}
		format, err := FormatFromPath(key)
		if err != nil {
			return nil, err
		}
		data, err := l.fetchS3(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return Decode(data, format)

	default:
		format, err := FormatFromPath(source)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, errors.New("E142").
				WithDetail("Cannot read route document " + source).
				Wrap(err)
		}
		return Decode(data, format)
	}
}

// Load reads source and builds its route table.
func (l *Loader) Load(ctx context.Context, source string) (*router.Table, error) {
	doc, err := l.LoadDocument(ctx, source)
	if err != nil {
		return nil, err
	}
	table, err := doc.Build()
	if err != nil {
		return nil, err
	}
	l.logger().Info("route table loaded",
		"source", source,
		"version", table.Version(),
		"routes", table.Len(),
	)
	return table, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

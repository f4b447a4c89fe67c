// Package catalog loads the list of tracked products.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// productsKey is the top-level key of the catalog document.
const productsKey = "products"

// ErrInvalidCatalog is returned when the file exists but cannot be decoded.
var ErrInvalidCatalog = errors.New("invalid product catalog")

// Loader reads a catalog file. The file is either {"products": [...]} or a
// bare list of products, in JSON or YAML.
type Loader struct {
	path   string
	logger logger.Logger
}

// NewLoader returns a loader for path.
func NewLoader(path string, log logger.Logger) *Loader {
	return &Loader{path: path, logger: log}
}

// Path returns the catalog file location.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the valid products in file order. A missing file yields no
// products. Entries without a URL or a positive target price, and entries
// repeating an earlier name, are skipped with a warning.
func (l *Loader) Load() ([]domain.Product, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Product catalog not found, nothing to check", logger.String("path", l.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.path, err)
	}

	items, err := decodeItems(data, configType(l.path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, l.path, err)
	}

	products := make([]domain.Product, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		p, decodeErr := decodeProduct(item)
		if decodeErr == nil {
			p = p.Normalize()
			decodeErr = p.Validate()
		}
		if decodeErr != nil {
			l.logger.Warn("Skipping invalid product",
				logger.Int("index", i),
				logger.Error(decodeErr),
			)
			continue
		}
		if _, dup := seen[p.Name]; dup {
			l.logger.Warn("Skipping product with duplicate name", logger.String("name", p.Name))
			continue
		}
		seen[p.Name] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return "yaml"
	default:
		return "json"
	}
}

// decodeItems returns the raw product entries. viper handles the keyed
// document; a bare list is read with yaml, which also accepts JSON.
func decodeItems(data []byte, format string) ([]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err == nil {
		raw := v.Get(productsKey)
		if raw == nil {
			return nil, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%q must be a list", productsKey)
		}
		return items, nil
	}

	var items []any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeProduct(item any) (domain.Product, error) {
	var p domain.Product
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecimalHook(),
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return p, err
	}
	if err = dec.Decode(item); err != nil {
		return p, err
	}
	return p, nil
}

var decimalType = reflect.TypeFor[decimal.Decimal]()

// DecimalHook converts strings and numbers into decimal.Decimal fields.
func DecimalHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != decimalType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case nil:
			return decimal.Zero, nil
		default:
			return data, nil
		}
	}
}

package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/darshit3596/shreejida/internal/model"
)

type settingRow struct {
	key   string
	value string
}

// marshalJSON encodes v as compact JSON TEXT with HTML escaping disabled, so
// stored values read the same as the JSON.stringify output of older files.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// marshalItems converts invoice line items to JSON TEXT for the items column.
func marshalItems(items []model.InvoiceItem) (string, error) {
	if items == nil {
		items = []model.InvoiceItem{}
	}
	data, err := marshalJSON(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return data, nil
}

// unmarshalItems parses the items column. NULL or empty text yields no items.
func unmarshalItems(data string) ([]model.InvoiceItem, error) {
	items := []model.InvoiceItem{}
	if data == "" || data == "null" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// marshalSettings produces one row per known key followed by the Extra keys
// in sorted order.
func marshalSettings(s model.Settings) ([]settingRow, error) {
	values := s.Values()
	rows := make([]settingRow, 0, len(model.SettingKeys)+len(s.Extra))
	for _, key := range model.SettingKeys {
		v, err := marshalJSON(values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal setting %q: %w", key, err)
		}
		rows = append(rows, settingRow{key: key, value: v})
	}

	extra := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		rows = append(rows, settingRow{key: k, value: string(s.Extra[k])})
	}
	return rows, nil
}

// unmarshalSettings folds settings rows back into the singleton. Keys this
// build does not know land in Extra unchanged. A missing or non-positive
// counter reads as 1, the first invoice number.
func unmarshalSettings(rows []settingRow) (model.Settings, error) {
	var s model.Settings
	for _, r := range rows {
		if r.key == model.KeyInvoiceCounter {
			var n float64
			if err := json.Unmarshal([]byte(r.value), &n); err != nil {
				return model.Settings{}, fmt.Errorf("unmarshal setting %q: %w", r.key, err)
			}
			s.InvoiceCounter = int64(n)
			continue
		}
		if field := s.Field(r.key); field != nil {
			if err := json.Unmarshal([]byte(r.value), field); err != nil {
				return model.Settings{}, fmt.Errorf("unmarshal setting %q: %w", r.key, err)
			}
			continue
		}
		if !json.Valid([]byte(r.value)) {
			return model.Settings{}, fmt.Errorf("unmarshal setting %q: invalid JSON", r.key)
		}
		if s.Extra == nil {
			s.Extra = make(map[string]json.RawMessage)
		}
		s.Extra[r.key] = json.RawMessage(r.value)
	}
	if s.InvoiceCounter < 1 {
		s.InvoiceCounter = 1
	}
	return s, nil
}

// Package catalog reads the game catalog the store sells.
//
// Items come from a Source (the store's HTTP API or its Postgres table) and are
// served through Client, which never reports failures to callers: an
// unreachable or broken backend looks like an empty catalog.
package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Item is a single catalog entry.
type Item struct {
	ID            int64      `db:"id"`
	Title         string     `db:"title"`
	Price         float64    `db:"price"`
	OriginalPrice *float64   `db:"original_price"`
	Description   *string    `db:"description"`
	Image         *string    `db:"image"`
	Platforms     StringList `db:"platform"`
	Categories    StringList `db:"categories"`
}

// Discount returns the rounded percentage saved against the original price.
// ok is false when there is no original price or it does not exceed Price.
func (it Item) Discount() (percent int, ok bool) {
	if it.OriginalPrice == nil {
		return 0, false
	}
	orig := *it.OriginalPrice
	if orig <= it.Price || orig <= 0 {
		return 0, false
	}
	return int(math.Round((1 - it.Price/orig) * 100)), true
}

// HasDescription reports whether a non-blank description is present.
func (it Item) HasDescription() bool {
	return it.Description != nil && strings.TrimSpace(*it.Description) != ""
}

func (it Item) valid() error {
	if it.ID <= 0 {
		return fmt.Errorf("catalog: item id %d must be positive", it.ID)
	}
	if it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
		return fmt.Errorf("catalog: item %d has invalid price %v", it.ID, it.Price)
	}
	return nil
}

// StringList is an ordered list of labels such as platforms or categories.
// It decodes from a JSON array, from a string holding a JSON array (the store
// API persists JSON.stringify output), or from a bare string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return fmt.Errorf("catalog: decode list: %w", err)
		}
		*l = cleanList(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("catalog: decode list: %w", err)
	}
	*l = parseListText(s)
	return nil
}

// Scan implements sql.Scanner for JSON/JSONB and text columns.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
	case []byte:
		*l = parseListText(string(v))
	case string:
		*l = parseListText(v)
	default:
		return fmt.Errorf("catalog: cannot scan %T into StringList", src)
	}
	return nil
}

// Value implements driver.Valuer, storing the list as a JSON array.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func parseListText(s string) StringList {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return cleanList(arr)
		}
	}
	return StringList{s}
}

func cleanList(in []string) StringList {
	out := make(StringList, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

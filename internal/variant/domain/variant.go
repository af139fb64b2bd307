// Package domain holds the canonical in-memory variant structure every
// persisted stock shape is normalized into, plus the pure stock operations
// (availability, decrement, restock) checkout and the admin editor share.
package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Mode discriminates the canonical variant structure.
type Mode string

const (
	// ModeNone means the product tracks no variants.
	ModeNone Mode = "none"
	// ModeSingle means stock is tracked per value of one dimension.
	ModeSingle Mode = "single"
	// ModeDual means stock is tracked per (dimension1, dimension2) pair.
	ModeDual Mode = "dual"
)

// StatusAvailable is the default leaf status when the persisted shape
// carries none.
const StatusAvailable = "available"

// KeySeparator joins the two dimension values of a dual-mode stock key.
const KeySeparator = "|"

// Value is one dimension-1 value. Qty mirrors the stock map in single mode;
// in dual mode quantities live only on combination keys.
type Value struct {
	Name string
	Qty  int64
}

// Canonical is the normalized variant structure. All downstream logic
// (availability, decrement, summation) operates on this one shape; only
// Parse and Serialize know about the persisted encodings.
type Canonical struct {
	Mode       Mode
	Dimension1 string
	Values1    []Value
	Dimension2 string
	Values2    []string

	// Stock maps a variant key (bare value name in single mode,
	// "v1|v2" in dual mode) to its remaining quantity.
	Stock map[string]int64

	// Status preserves per-key availability flags through a round-trip.
	Status map[string]string
}

// legacy flat map:        { "M": 10 }
// single structured:      { "M": {"qty": 10, "status": "available"} }
// dual:                   { "dimensions": [...], "options": {...}, "combinations": {...} }
type structuredEntry struct {
	Qty    int64  `json:"qty"`
	Status string `json:"status"`
}

type dualShape struct {
	Dimensions   []string                   `json:"dimensions"`
	Options      map[string][]string        `json:"options"`
	Combinations map[string]structuredEntry `json:"combinations"`
}

// DualKey builds the stock key for a (dimension1, dimension2) value pair.
func DualKey(v1, v2 string) string {
	return v1 + KeySeparator + v2
}

// Parse normalizes persisted variant JSON of any supported shape into the
// canonical structure. sizeSystemHint names the single dimension when the
// shape itself does not (legacy and structured maps). A nil or empty
// payload yields ModeNone; anything unrecognizable is
// ErrMalformedVariantData.
func Parse(raw []byte, sizeSystemHint string) (*Canonical, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return &Canonical{Mode: ModeNone, Stock: map[string]int64{}, Status: map[string]string{}}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, ErrMalformedVariantData
	}

	if _, ok := top["dimensions"]; ok {
		return parseDual(raw)
	}
	return parseFlat(top, sizeSystemHint)
}

func parseDual(raw []byte) (*Canonical, error) {
	var shape dualShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, ErrMalformedVariantData
	}
	if len(shape.Dimensions) != 2 {
		return nil, ErrMalformedVariantData
	}

	dim1 := strings.TrimSpace(shape.Dimensions[0])
	dim2 := strings.TrimSpace(shape.Dimensions[1])
	if dim1 == "" || dim2 == "" {
		return nil, ErrMalformedVariantData
	}

	options1 := shape.Options[dim1]
	options2 := shape.Options[dim2]
	if len(options1) == 0 || len(options2) == 0 {
		return nil, ErrMalformedVariantData
	}

	c := &Canonical{
		Mode:       ModeDual,
		Dimension1: dim1,
		Dimension2: dim2,
		Values2:    append([]string(nil), options2...),
		Stock:      make(map[string]int64, len(options1)*len(options2)),
		Status:     make(map[string]string),
	}
	for _, v1 := range options1 {
		c.Values1 = append(c.Values1, Value{Name: v1})
	}

	// Every (v1, v2) pair present in options gets a stock entry; a pair
	// missing from combinations means qty 0.
	for _, v1 := range options1 {
		for _, v2 := range options2 {
			key := DualKey(v1, v2)
			entry, ok := shape.Combinations[key]
			if !ok {
				c.Stock[key] = 0
				c.Status[key] = StatusAvailable
				continue
			}
			if entry.Qty < 0 {
				return nil, ErrMalformedVariantData
			}
			c.Stock[key] = entry.Qty
			c.Status[key] = normalizeStatus(entry.Status)
		}
	}

	return c, nil
}

func parseFlat(top map[string]json.RawMessage, sizeSystemHint string) (*Canonical, error) {
	dim := strings.TrimSpace(sizeSystemHint)
	if dim == "" {
		dim = "Size"
	}

	c := &Canonical{
		Mode:       ModeSingle,
		Dimension1: dim,
		Stock:      make(map[string]int64, len(top)),
		Status:     make(map[string]string, len(top)),
	}

	names := make([]string, 0, len(top))
	for name := range top {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := top[name]

		var qty int64
		if err := json.Unmarshal(value, &qty); err == nil {
			// Legacy flat map value.
			if qty < 0 {
				return nil, ErrMalformedVariantData
			}
			c.Stock[name] = qty
			c.Status[name] = StatusAvailable
			c.Values1 = append(c.Values1, Value{Name: name, Qty: qty})
			continue
		}

		var entry structuredEntry
		if err := json.Unmarshal(value, &entry); err != nil || entry.Qty < 0 {
			return nil, ErrMalformedVariantData
		}
		c.Stock[name] = entry.Qty
		c.Status[name] = normalizeStatus(entry.Status)
		c.Values1 = append(c.Values1, Value{Name: name, Qty: entry.Qty})
	}

	return c, nil
}

// Serialize writes the canonical structure back out. Single mode always
// serializes to the structured shape; the legacy flat map is read-only.
func (c *Canonical) Serialize() ([]byte, error) {
	switch c.Mode {
	case ModeNone:
		return []byte("{}"), nil
	case ModeSingle:
		out := make(map[string]structuredEntry, len(c.Values1))
		for _, v := range c.Values1 {
			out[v.Name] = structuredEntry{
				Qty:    c.Stock[v.Name],
				Status: c.statusFor(v.Name),
			}
		}
		return json.Marshal(out)
	case ModeDual:
		shape := dualShape{
			Dimensions:   []string{c.Dimension1, c.Dimension2},
			Options:      map[string][]string{},
			Combinations: make(map[string]structuredEntry, len(c.Stock)),
		}
		for _, v := range c.Values1 {
			shape.Options[c.Dimension1] = append(shape.Options[c.Dimension1], v.Name)
		}
		shape.Options[c.Dimension2] = append([]string(nil), c.Values2...)
		for _, v1 := range c.Values1 {
			for _, v2 := range c.Values2 {
				key := DualKey(v1.Name, v2)
				shape.Combinations[key] = structuredEntry{
					Qty:    c.Stock[key],
					Status: c.statusFor(key),
				}
			}
		}
		return json.Marshal(shape)
	default:
		return nil, ErrMalformedVariantData
	}
}

// Tracked reports whether the product tracks per-variant stock at all.
// An untracked product still sells: decrement and restock validate the
// selection (only the empty one fits) and leave the structure alone.
func (c *Canonical) Tracked() bool {
	return c.Mode != ModeNone
}

// Availability returns the remaining quantity for a selection. A selection
// whose dimension values exist but which has no stock entry is out of
// stock, not invalid: it returns 0. A selection naming a value that never
// existed fails with ErrUnknownVariant. Untracked products carry no
// quantity to report.
func (c *Canonical) Availability(selection string) (int64, error) {
	if err := c.validateSelection(selection); err != nil {
		return 0, err
	}
	return c.Stock[selection], nil
}

// Decrement returns a copy of the canonical structure with the quantity at
// selection reduced by qty. It never produces a negative quantity: when
// fewer than qty units remain it fails with InsufficientStockError and the
// receiver is untouched. On an untracked product the empty selection
// passes through without limiting quantity.
func (c *Canonical) Decrement(selection string, qty int64) (*Canonical, error) {
	if !c.Tracked() {
		if err := c.validateSelection(selection); err != nil {
			return nil, err
		}
		return c.clone(), nil
	}

	available, err := c.Availability(selection)
	if err != nil {
		return nil, err
	}
	if available < qty {
		return nil, &InsufficientStockError{Selection: selection, Requested: qty, Available: available}
	}

	next := c.clone()
	next.setQty(selection, available-qty)
	return next, nil
}

// Restock returns a copy with qty units added back at selection. There is
// no upper bound: returned merchandise may exceed what was tracked as sold
// if stock was adjusted manually elsewhere.
func (c *Canonical) Restock(selection string, qty int64) (*Canonical, error) {
	if err := c.validateSelection(selection); err != nil {
		return nil, err
	}
	if !c.Tracked() {
		return c.clone(), nil
	}

	next := c.clone()
	next.setQty(selection, next.Stock[selection]+qty)
	return next, nil
}

// TotalStock sums every leaf quantity regardless of shape.
func (c *Canonical) TotalStock() int64 {
	var total int64
	for _, qty := range c.Stock {
		total += qty
	}
	return total
}

func (c *Canonical) validateSelection(selection string) error {
	switch c.Mode {
	case ModeNone:
		// No variants exist, so only the empty selection fits.
		if selection == "" {
			return nil
		}
		return &UnknownVariantError{Selection: selection}
	case ModeSingle:
		for _, v := range c.Values1 {
			if v.Name == selection {
				return nil
			}
		}
		return &UnknownVariantError{Selection: selection}
	case ModeDual:
		parts := strings.SplitN(selection, KeySeparator, 2)
		if len(parts) != 2 {
			return &UnknownVariantError{Selection: selection}
		}
		if !c.hasValue1(parts[0]) || !c.hasValue2(parts[1]) {
			return &UnknownVariantError{Selection: selection}
		}
		return nil
	default:
		return &UnknownVariantError{Selection: selection}
	}
}

func (c *Canonical) hasValue1(name string) bool {
	for _, v := range c.Values1 {
		if v.Name == name {
			return true
		}
	}
	return false
}

func (c *Canonical) hasValue2(name string) bool {
	for _, v := range c.Values2 {
		if v == name {
			return true
		}
	}
	return false
}

func (c *Canonical) setQty(key string, qty int64) {
	c.Stock[key] = qty
	if _, ok := c.Status[key]; !ok {
		c.Status[key] = StatusAvailable
	}
	if c.Mode == ModeSingle {
		for i := range c.Values1 {
			if c.Values1[i].Name == key {
				c.Values1[i].Qty = qty
			}
		}
	}
}

func (c *Canonical) statusFor(key string) string {
	if status, ok := c.Status[key]; ok && status != "" {
		return status
	}
	return StatusAvailable
}

func (c *Canonical) clone() *Canonical {
	next := &Canonical{
		Mode:       c.Mode,
		Dimension1: c.Dimension1,
		Dimension2: c.Dimension2,
		Values1:    append([]Value(nil), c.Values1...),
		Values2:    append([]string(nil), c.Values2...),
		Stock:      make(map[string]int64, len(c.Stock)),
		Status:     make(map[string]string, len(c.Status)),
	}
	for k, v := range c.Stock {
		next.Stock[k] = v
	}
	for k, v := range c.Status {
		next.Status[k] = v
	}
	return next
}

func normalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return StatusAvailable
	}
	return status
}

// Package domain contains core business types and interfaces.
//
// This file defines the inspection template schema: the per-equipment JSON
// document describing which sections an inspection form and its rendered
// report contain.
package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// =============================================================================
// Section Types
// =============================================================================

// SectionType identifies the rendering variant of a template section.
// A section without a type is a legacy section rendered via its fields list.
type SectionType string

const (
	SectionKeyValue  SectionType = "key_value"
	SectionChecklist SectionType = "checklist"
	SectionTable     SectionType = "table"
	SectionPhotos    SectionType = "photos"
	SectionNotes     SectionType = "notes"
)

// IsValid returns true if the section type is a recognized value.
func (t SectionType) IsValid() bool {
	switch t {
	case SectionKeyValue, SectionChecklist, SectionTable, SectionPhotos, SectionNotes:
		return true
	}
	return false
}

// =============================================================================
// Template Document
// =============================================================================

// Template is the schema document embedded in an equipment row. It drives
// both inspection-form rendering in the UI and report HTML generation.
type Template struct {
	Settings TemplateSettings `json:"settings,omitempty"`
	Sections []Section        `json:"sections"`
}

type TemplateSettings struct {
	ReportStyle TemplateReportStyle `json:"reportStyle,omitempty"`
}

type TemplateReportStyle struct {
	Scale string `json:"scale,omitempty"`
}

// Section is a tagged variant: exactly one of the type-specific field sets
// is meaningful depending on Type. A section with an empty Type is legacy
// and carries Fields instead.
type Section struct {
	Type  SectionType `json:"type,omitempty"`
	Title string      `json:"title"`

	// Columns is an integer (column count) for key_value/checklist sections
	// but an array of column definitions for table sections, so it stays
	// raw until the consumer knows which shape to expect.
	Columns     json.RawMessage `json:"columns,omitempty"`
	PairsPerRow json.RawMessage `json:"pairsPerRow,omitempty"`

	Items     []TemplateItem     `json:"items,omitempty"`     // key_value
	Questions []TemplateQuestion `json:"questions,omitempty"` // checklist
	Field     string             `json:"field,omitempty"`     // table, photos, notes
	ID        string             `json:"id,omitempty"`        // fallback data key
	MaxCount  int                `json:"maxCount,omitempty"`  // photos

	Fields []TemplateField `json:"fields,omitempty"` // legacy
}

// IsLegacy reports whether the section uses the untyped fields format.
func (s *Section) IsLegacy() bool {
	return s.Type == ""
}

// DataKey returns the inspection-data key the section reads its value from.
func (s *Section) DataKey() string {
	if s.Field != "" {
		return s.Field
	}
	return s.ID
}

// GridColumns interprets Columns (or PairsPerRow) as a column count,
// falling back when absent, non-numeric, or non-positive.
func (s *Section) GridColumns(fallback int) int {
	for _, raw := range []json.RawMessage{s.Columns, s.PairsPerRow} {
		if n, ok := parseColumnCount(raw); ok {
			return n
		}
	}
	return fallback
}

// TableColumns interprets Columns as a list of column definitions.
func (s *Section) TableColumns() []TemplateColumn {
	if len(s.Columns) == 0 {
		return nil
	}
	var cols []TemplateColumn
	if err := json.Unmarshal(s.Columns, &cols); err != nil {
		return nil
	}
	return cols
}

func parseColumnCount(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n > 0 {
			return n, true
		}
		return 0, false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// TemplateItem is one entry of a key_value section.
type TemplateItem struct {
	Name      string   `json:"name"`
	Label     string   `json:"label,omitempty"`
	ValueType string   `json:"valueType,omitempty"` // text|number|date|select
	Format    string   `json:"format,omitempty"`    // "date" switches value formatting
	Options   []string `json:"options,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Colspan   int      `json:"colspan,omitempty"`
	Emphasis  bool     `json:"emphasis,omitempty"`
	Required  bool     `json:"required,omitempty"`
}

// TemplateQuestion is one entry of a checklist section.
type TemplateQuestion struct {
	Name       string   `json:"name"`
	Label      string   `json:"label,omitempty"`
	Options    []string `json:"options,omitempty"`
	PassValues []string `json:"passValues,omitempty"`
	FailValues []string `json:"failValues,omitempty"`
	Colspan    int      `json:"colspan,omitempty"`
	Required   bool     `json:"required,omitempty"`
}

// TemplateColumn is one column of a table section or a legacy table field.
type TemplateColumn struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// TemplateField is one entry of a legacy (untyped) section.
type TemplateField struct {
	Name     string           `json:"name"`
	Label    string           `json:"label,omitempty"`
	Type     string           `json:"type,omitempty"` // text|number|date|select|table|photo
	Options  []string         `json:"options,omitempty"`
	Columns  []TemplateColumn `json:"columns,omitempty"`
	Required bool             `json:"required,omitempty"`
}

// ParseTemplate decodes a template document. A nil/empty payload yields an
// empty template rather than an error so callers can stay defensive.
func ParseTemplate(raw []byte) *Template {
	tpl := &Template{}
	if len(raw) == 0 {
		return tpl
	}
	if err := json.Unmarshal(raw, tpl); err != nil {
		return &Template{}
	}
	return tpl
}

// =============================================================================
// Template Validation
// =============================================================================

var legacyFieldTypes = map[string]bool{
	"text":   true,
	"number": true,
	"date":   true,
	"select": true,
	"table":  true,
	"photo":  true,
}

var itemValueTypes = map[string]bool{
	"text":   true,
	"number": true,
	"date":   true,
	"select": true,
}

// ValidateTemplate checks a raw template document against the schema rules.
// It runs at equipment create/update time, never at render time, and it
// never panics: a structurally broken document simply reports false.
func ValidateTemplate(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var doc struct {
		Sections json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	var sections []json.RawMessage
	if err := json.Unmarshal(doc.Sections, &sections); err != nil {
		return false
	}
	for _, rawSection := range sections {
		var section Section
		if err := json.Unmarshal(rawSection, &section); err != nil {
			return false
		}
		if strings.TrimSpace(section.Title) == "" {
			return false
		}
		if !validateSection(&section) {
			return false
		}
	}
	return true
}

func validateSection(section *Section) bool {
	if section.IsLegacy() {
		return validateLegacySection(section)
	}
	if !section.Type.IsValid() {
		return false
	}
	switch section.Type {
	case SectionKeyValue:
		if section.Items == nil {
			return false
		}
		for _, item := range section.Items {
			if strings.TrimSpace(item.Name) == "" {
				return false
			}
			valueType := item.ValueType
			if valueType == "" {
				valueType = "text"
			}
			if !itemValueTypes[valueType] {
				return false
			}
			if valueType == "select" && len(item.Options) == 0 {
				return false
			}
		}
	case SectionChecklist:
		if section.Questions == nil {
			return false
		}
		for _, q := range section.Questions {
			if strings.TrimSpace(q.Name) == "" {
				return false
			}
			if len(q.Options) == 0 {
				return false
			}
		}
	case SectionTable:
		cols := section.TableColumns()
		if len(cols) == 0 {
			return false
		}
		for _, col := range cols {
			if strings.TrimSpace(col.Name) == "" {
				return false
			}
		}
	case SectionPhotos, SectionNotes:
		if strings.TrimSpace(section.DataKey()) == "" {
			return false
		}
	}
	return true
}

func validateLegacySection(section *Section) bool {
	if section.Fields == nil {
		return false
	}
	for _, field := range section.Fields {
		if strings.TrimSpace(field.Name) == "" {
			return false
		}
		if !legacyFieldTypes[field.Type] {
			return false
		}
		if field.Type == "select" && len(field.Options) == 0 {
			return false
		}
		if field.Type == "table" && len(field.Columns) == 0 {
			return false
		}
	}
	return true
}

// =============================================================================
// Completion Validation
// =============================================================================

// ValidateInspectionCompletion returns the names of required legacy fields
// that are still empty in the inspection data. Typed-section required flags
// are intentionally not enforced here; the form layer handles those before
// submission. A nil template means there is nothing to validate.
func ValidateInspectionCompletion(tpl *Template, data map[string]any) []string {
	if tpl == nil {
		return nil
	}
	var missing []string
	for _, section := range tpl.Sections {
		if !section.IsLegacy() {
			continue
		}
		for _, field := range section.Fields {
			if !field.Required {
				continue
			}
			if isEmptyValue(data[field.Name]) {
				name := field.Label
				if name == "" {
					name = field.Name
				}
				missing = append(missing, name)
			}
		}
	}
	return missing
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	return false
}

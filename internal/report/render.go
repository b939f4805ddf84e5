// Package report renders inspection reports: template-driven HTML
// generation, style presets, and QR verification images.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/inspekta-io/inspekta/internal/domain"
)

// turkishLower handles the dotted/dotless i distinction so vocabulary
// matching works on values like "UYGUN DEĞİL".
var turkishLower = cases.Lower(language.Turkish)

// =============================================================================
// Value Formatting
// =============================================================================

func escape(s string) string {
	return html.EscapeString(s)
}

// formatValue renders a free-form inspection value as escaped display
// text. Missing values render as "-"; slices join with commas.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return escape(val)
	case []any:
		if len(val) == 0 {
			return "-"
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatScalar(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		if len(val) == 0 {
			return "-"
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, escape(item))
		}
		return strings.Join(parts, ", ")
	case time.Time:
		return formatDate(val)
	case *time.Time:
		if val == nil {
			return "-"
		}
		return formatDate(*val)
	default:
		return formatScalar(val)
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return escape(val)
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing ".0" noise
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return escape(fmt.Sprintf("%v", val))
	}
}

// formatDate renders dates in the Turkish dd.MM.yyyy convention.
func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
}

// formatDateValue formats a free-form value as a date when possible,
// falling back to plain value formatting.
func formatDateValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case time.Time:
		return formatDate(val)
	case *time.Time:
		if val == nil {
			return "-"
		}
		return formatDate(*val)
	case string:
		if val == "" {
			return "-"
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return formatDate(t)
			}
		}
		return escape(val)
	default:
		return formatValue(val)
	}
}

func toDisplayString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// =============================================================================
// Grid Layout
// =============================================================================

type gridCell struct {
	Span      int
	ClassName string
	HTML      string
}

// buildRowsFromCells packs cells into rows of columnCount slots. A cell's
// span is clamped to [1, columnCount]; when the remaining width in the
// current row cannot fit the next cell, the row is flushed and the cell
// starts a new one.
func buildRowsFromCells(cells []gridCell, columnCount int) [][]gridCell {
	var rows [][]gridCell
	var currentRow []gridCell
	remaining := columnCount

	for _, cell := range cells {
		span := cell.Span
		if span < 1 {
			span = 1
		}
		if span > columnCount {
			span = columnCount
		}
		if span > remaining {
			if len(currentRow) > 0 {
				rows = append(rows, currentRow)
			}
			currentRow = nil
			remaining = columnCount
		}
		cell.Span = span
		currentRow = append(currentRow, cell)
		remaining -= span
		if remaining == 0 {
			rows = append(rows, currentRow)
			currentRow = nil
			remaining = columnCount
		}
	}

	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}
	return rows
}

func renderGridTable(section *domain.Section, cells []gridCell, columnCount int, tableClass string) string {
	cols := section.GridColumns(columnCount)
	rows := buildRowsFromCells(cells, cols)

	var b strings.Builder
	fmt.Fprintf(&b, `<table class="%s">`, tableClass)

	if len(rows) == 0 {
		fmt.Fprintf(&b, `<tr><td class="kv-block kv-block--empty" colspan="%d">-</td></tr>`, cols)
	} else {
		for _, row := range rows {
			filled := 0
			b.WriteString("<tr>")
			for _, cell := range row {
				className := "kv-block"
				if cell.ClassName != "" {
					className += " " + cell.ClassName
				}
				fmt.Fprintf(&b, `<td class="%s" colspan="%d">%s</td>`, className, cell.Span, cell.HTML)
				filled += cell.Span
			}
			if filled < cols {
				fmt.Fprintf(&b, `<td class="kv-block kv-block--empty" colspan="%d"></td>`, cols-filled)
			}
			b.WriteString("</tr>")
		}
	}

	b.WriteString("</table>")
	return wrapSection(section, b.String())
}

func wrapSection(section *domain.Section, inner string) string {
	var title string
	if section.Title != "" {
		title = fmt.Sprintf(`<div class="section-title">%s</div>`, escape(section.Title))
	}
	return fmt.Sprintf(`
    <section class="section">
      %s
      <div class="section-body">
        %s
      </div>
    </section>
  `, title, inner)
}

// =============================================================================
// Section Renderers
// =============================================================================

func renderKeyValue(section *domain.Section, data map[string]any) string {
	cells := make([]gridCell, 0, len(section.Items))
	for _, item := range section.Items {
		rawValue := data[item.Name]

		var valueHTML string
		switch item.Format {
		case "date":
			valueHTML = formatDateValue(rawValue)
		default:
			valueHTML = formatValue(rawValue)
		}

		var unit string
		if item.Unit != "" {
			unit = fmt.Sprintf(`<span class="kv-unit">%s</span>`, escape(item.Unit))
		}
		label := item.Label
		if label == "" {
			label = item.Name
		}
		cellHTML := fmt.Sprintf(`
      <div class="kv-label">%s</div>
      <div class="kv-value">%s%s</div>
    `, escape(label), valueHTML, unit)

		var className string
		if item.Emphasis {
			className = "kv-block--emphasis"
		}
		cells = append(cells, gridCell{Span: item.Colspan, ClassName: className, HTML: cellHTML})
	}

	return renderGridTable(section, cells, 2, "kv-table")
}

// checklistTone classifies an answer as pass, fail, or neutral. Explicit
// per-question pass/fail value lists win; otherwise the answer is matched
// against the Turkish pass/fail vocabulary. "değil" must be checked before
// "uygun" since "uygun değil" contains both.
func checklistTone(rawValue any, question *domain.TemplateQuestion) string {
	value := toDisplayString(rawValue)
	for _, pass := range question.PassValues {
		if pass == value {
			return "pass"
		}
	}
	for _, fail := range question.FailValues {
		if fail == value {
			return "fail"
		}
	}

	str := turkishLower.String(value)
	if str == "" {
		return "neutral"
	}
	if strings.Contains(str, "uygun değil") || strings.Contains(str, "fail") || strings.Contains(str, "değil") {
		return "fail"
	}
	if strings.Contains(str, "uygun") || strings.Contains(str, "pass") {
		return "pass"
	}
	if str == "n/a" || str == "na" || strings.Contains(str, "uygulanamaz") {
		return "neutral"
	}
	return "neutral"
}

func renderChecklist(section *domain.Section, data map[string]any) string {
	cells := make([]gridCell, 0, len(section.Questions))
	for i := range section.Questions {
		question := &section.Questions[i]
		rawValue := data[question.Name]
		tone := checklistTone(rawValue, question)
		valueHTML := fmt.Sprintf(`<span class="status-tag status-%s">%s</span>`, tone, formatValue(rawValue))
		label := question.Label
		if label == "" {
			label = question.Name
		}
		cellHTML := fmt.Sprintf(`
      <div class="kv-label">%s</div>
      <div class="kv-value kv-value--status">%s</div>
    `, escape(label), valueHTML)
		cells = append(cells, gridCell{Span: question.Colspan, ClassName: "kv-block--compact", HTML: cellHTML})
	}

	return renderGridTable(section, cells, 2, "kv-table kv-table--compact")
}

func renderTable(section *domain.Section, data map[string]any) string {
	columns := section.TableColumns()
	rows, _ := data[section.DataKey()].([]any)
	columnCount := len(columns)
	if columnCount == 0 {
		columnCount = 1
	}

	var b strings.Builder
	b.WriteString(`<div class="table-wrapper"><table class="structured-table">`)
	if len(columns) > 0 {
		b.WriteString("<thead><tr>")
		for _, col := range columns {
			label := col.Label
			if label == "" {
				label = col.Name
			}
			fmt.Fprintf(&b, "<th>%s</th>", escape(label))
		}
		b.WriteString("</tr></thead>")
	}
	b.WriteString("<tbody>")
	if len(rows) > 0 {
		for _, raw := range rows {
			rowData, _ := raw.(map[string]any)
			b.WriteString("<tr>")
			for _, col := range columns {
				var cellValue any
				if rowData != nil {
					cellValue = rowData[col.Name]
				}
				var unit string
				if col.Unit != "" {
					unit = fmt.Sprintf(` <span class="kv-unit">%s</span>`, escape(col.Unit))
				}
				fmt.Fprintf(&b, "<td>%s%s</td>", formatValue(cellValue), unit)
			}
			b.WriteString("</tr>")
		}
	} else {
		fmt.Fprintf(&b, `<tr><td class="structured-table__empty" colspan="%d">Kayıt bulunmuyor</td></tr>`, columnCount)
	}
	b.WriteString("</tbody></table></div>")

	return wrapSection(section, b.String())
}

func renderPhotos(section *domain.Section, data map[string]any, photos []string) string {
	field := section.DataKey()
	var urls []string
	if field != "" {
		if mapped, ok := data[field].([]any); ok {
			for _, u := range mapped {
				if s, ok := u.(string); ok {
					urls = append(urls, s)
				}
			}
		}
	}
	if urls == nil {
		urls = photos
	}

	alt := section.Title
	if alt == "" {
		alt = field
	}
	if alt == "" {
		alt = "photo"
	}

	var b strings.Builder
	for _, url := range urls {
		fmt.Fprintf(&b, `<div class="photo-item"><img src="%s" alt="%s" /></div>`, escape(url), escape(alt))
	}
	grid := b.String()
	if grid == "" {
		grid = `<div class="photo-item photo-item--empty">Fotoğraf bulunmuyor</div>`
	}
	return wrapSection(section, fmt.Sprintf(`<div class="photo-grid">%s</div>`, grid))
}

func renderNotes(section *domain.Section, data map[string]any) string {
	var val any
	if field := section.DataKey(); field != "" {
		val = data[field]
	}
	return wrapSection(section, fmt.Sprintf(`<div class="notes">%s</div>`, formatValue(val)))
}

// =============================================================================
// Legacy Rendering
// =============================================================================

// renderLegacy re-renders the entire template via the untyped fields
// format. A single untyped section switches the whole document to this
// path; mixed typed/legacy rendering is deliberately not supported.
func renderLegacy(tpl *domain.Template, data map[string]any, photos []string) string {
	var out strings.Builder
	for i := range tpl.Sections {
		section := &tpl.Sections[i]
		if section.Fields == nil {
			continue
		}
		var b strings.Builder
		b.WriteString(`<table class="legacy-table">`)
		for _, field := range section.Fields {
			value := data[field.Name]
			switch {
			case field.Type == "table":
				b.WriteString(renderLegacyTableField(&field, value))
			case field.Type == "photo":
				b.WriteString(renderLegacyPhotoField(&field, value, photos))
			default:
				fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>", escape(field.Label), formatValue(value))
			}
		}
		b.WriteString("</table>")
		out.WriteString(wrapSection(section, b.String()))
	}
	return out.String()
}

func renderLegacyTableField(field *domain.TemplateField, value any) string {
	rows, ok := value.([]any)
	if !ok {
		return fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>", escape(field.Label), formatValue(value))
	}

	var b strings.Builder
	b.WriteString(`<table class="structured-table">`)
	if len(field.Columns) > 0 && len(rows) > 0 {
		b.WriteString("<thead><tr>")
		for _, col := range field.Columns {
			fmt.Fprintf(&b, "<th>%s</th>", escape(col.Label))
		}
		b.WriteString("</tr></thead><tbody>")
		for _, raw := range rows {
			rowData, _ := raw.(map[string]any)
			b.WriteString("<tr>")
			for _, col := range field.Columns {
				var cellValue any
				if rowData != nil {
					cellValue = rowData[col.Name]
				}
				fmt.Fprintf(&b, "<td>%s</td>", formatValue(cellValue))
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody>")
	} else {
		b.WriteString("<tbody><tr><td>Kayıt bulunmuyor</td></tr></tbody>")
	}
	b.WriteString("</table>")

	return fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>", escape(field.Label), b.String())
}

func renderLegacyPhotoField(field *domain.TemplateField, value any, photos []string) string {
	var urls []string
	switch mapped := value.(type) {
	case []any:
		for _, u := range mapped {
			if s, ok := u.(string); ok {
				urls = append(urls, s)
			}
		}
	case string:
		urls = []string{mapped}
	default:
		for _, url := range photos {
			if strings.Contains(url, field.Name) {
				urls = append(urls, url)
			}
		}
	}

	var b strings.Builder
	for _, url := range urls {
		fmt.Fprintf(&b, `<img src="%s" alt="%s" class="legacy-photo">`, escape(url), escape(field.Label))
	}
	imgs := b.String()
	if imgs == "" {
		imgs = "-"
	}
	return fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>", escape(field.Label), imgs)
}

// =============================================================================
// Template Dispatch
// =============================================================================

func renderTemplate(tpl *domain.Template, data map[string]any, photos []string) string {
	if tpl == nil || tpl.Sections == nil {
		return ""
	}

	// Pre-pass: any untyped section downgrades the whole document to the
	// legacy renderer.
	for i := range tpl.Sections {
		if tpl.Sections[i].IsLegacy() {
			return renderLegacy(tpl, data, photos)
		}
	}

	var b strings.Builder
	for i := range tpl.Sections {
		section := &tpl.Sections[i]
		switch section.Type {
		case domain.SectionKeyValue:
			b.WriteString(renderKeyValue(section, data))
		case domain.SectionChecklist:
			b.WriteString(renderChecklist(section, data))
		case domain.SectionTable:
			b.WriteString(renderTable(section, data))
		case domain.SectionPhotos:
			b.WriteString(renderPhotos(section, data, photos))
		case domain.SectionNotes:
			b.WriteString(renderNotes(section, data))
		default:
			b.WriteString(wrapSection(section, `<div class="notes">Desteklenmeyen bölüm türü</div>`))
		}
	}
	return b.String()
}

// =============================================================================
// Document Assembly
// =============================================================================

func intColumns(n int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%d", n))
}

// BuildHTML renders the complete, self-contained report document for the
// given context. It is a pure string builder: no I/O, deterministic output
// for the same input, and it never fails on malformed inspection data —
// missing values render as "-".
func BuildHTML(rc *domain.ReportContext) string {
	data := rc.InspectionData
	if data == nil {
		data = map[string]any{}
	}
	photos := rc.PhotoURLs

	scale := ResolveScale(rc)
	preset := ResolvePreset(scale)

	generalInfoData := map[string]any{
		"isveren_unvan":      rc.CustomerName,
		"is_emri_no":         rc.WorkOrderNo,
		"muayene_tarihi":     rc.InspectionDate,
		"muayene_saati":      rc.TimeRange(),
		"muayene_teknisyeni": rc.TechnicianName,
	}
	generalInfoSection := renderKeyValue(&domain.Section{
		Title:   "1. GENEL BİLGİLER",
		Type:    domain.SectionKeyValue,
		Columns: intColumns(3),
		Items: []domain.TemplateItem{
			{Name: "isveren_unvan", Label: "İşveren Ünvanı"},
			{Name: "is_emri_no", Label: "İş Emri No"},
			{Name: "muayene_tarihi", Label: "Muayene Tarihi", Format: "date"},
			{Name: "muayene_saati", Label: "Muayene Saati"},
			{Name: "muayene_teknisyeni", Label: "Muayene Teknisyeni", Colspan: 3},
		},
	}, generalInfoData)

	equipmentInfoSection := renderKeyValue(&domain.Section{
		Title:   "2. EKİPMAN BİLGİLERİ",
		Type:    domain.SectionKeyValue,
		Columns: intColumns(2),
		Items: []domain.TemplateItem{
			{Name: "equipment_name", Label: "Ekipman Adı"},
			{Name: "equipment_type", Label: "Ekipman Türü"},
		},
	}, map[string]any{
		"equipment_name": rc.EquipmentName,
		"equipment_type": rc.EquipmentType,
	})

	sectionsHTML := generalInfoSection + equipmentInfoSection + renderTemplate(rc.Template, data, photos)

	reportNumber := rc.ReportNumber()
	createdAt := formatDate(rc.CreatedAt)
	if rc.CreatedAt.IsZero() {
		createdAt = formatDate(time.Now())
	}
	inspectionDate := "-"
	if rc.InspectionDate != nil {
		inspectionDate = formatDate(*rc.InspectionDate)
	}

	var qrBlock string
	if rc.QRCodeDataURL != "" {
		var qrLink string
		if rc.QRPublicURL != "" {
			url := escape(rc.QRPublicURL)
			qrLink = fmt.Sprintf(`<div><a href="%s">%s</a></div>`, url, url)
		}
		qrBlock = fmt.Sprintf(`
        <div class="qr-block">
          <img src="%s" alt="Rapor QR Kodu" />
          <div class="qr-info">
            <div><strong>QR Doğrulama</strong></div>
            %s
          </div>
        </div>
      `, rc.QRCodeDataURL, qrLink)
	} else {
		qrBlock = fmt.Sprintf(`<div><strong>QR Token:</strong> %s</div>`, formatValue(rc.QRToken))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>Muayene Raporu</title>
    <style>%s</style>
  </head>
  <body>
    <div class="report-container">
      <header class="report-header">
        <div class="report-header__title">
          <div class="report-company">%s</div>
          <div class="report-document">Muayene Raporu</div>
        </div>
        <div class="report-meta">
          <table class="meta-table">
            <tr><th>Rapor No</th><td>%s</td></tr>
            <tr><th>Rapor Tarihi</th><td>%s</td></tr>
            <tr><th>İş Emri No</th><td>%s</td></tr>
            <tr><th>Muayene Tarihi</th><td>%s</td></tr>
          </table>
        </div>
      </header>

      %s

      <footer class="report-footer">
        %s
        <div>Bu rapor %s tarafından oluşturulmuştur.</div>
        <div>Rapor Oluşturma Tarihi: %s</div>
      </footer>
    </div>
  </body>
</html>
`,
		baseStyles(preset),
		escape(rc.CompanyName),
		formatValue(reportNumber),
		createdAt,
		formatValue(rc.WorkOrderNo),
		inspectionDate,
		sectionsHTML,
		qrBlock,
		formatValue(rc.CompanyName),
		createdAt,
	)
}

func baseStyles(preset StylePreset) string {
	return fmt.Sprintf(`
  :root {
%s  }
  * { box-sizing: border-box; }
  body { font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: var(--report-page-padding); background: #f3f4f6; color: #0f172a; font-size: var(--report-font-base); }
  .report-container { background: #ffffff; border: 2px solid #1f2937; padding: var(--report-container-padding); width: 100%%; max-width: 900px; margin: 0 auto; }
  .report-header { display: flex; justify-content: space-between; align-items: flex-start; gap: var(--report-header-gap); margin-bottom: calc(var(--report-header-gap) * 1.1); }
  .report-header__title { display: flex; flex-direction: column; gap: 4px; }
  .report-company { font-size: var(--report-company-font); font-weight: 700; letter-spacing: 0.05em; text-transform: uppercase; }
  .report-document { font-size: var(--report-document-font); font-weight: 600; text-transform: uppercase; color: #1f2937; }
  .report-meta { min-width: 220px; }
  .meta-table { width: 100%%; border-collapse: collapse; font-size: var(--report-meta-font); }
  .meta-table th { text-align: left; background: #1f2937; color: #ffffff; padding: var(--report-meta-padding); border: 1px solid #0f172a; text-transform: uppercase; letter-spacing: 0.05em; }
  .meta-table td { padding: var(--report-meta-padding); border: 1px solid #0f172a; background: #f8fafc; }
  .section { margin-bottom: var(--report-section-gap); border: 1px solid #1f2937; }
  .section-title { background: #1f2937; color: #ffffff; font-weight: 700; padding: var(--report-section-title-padding); font-size: var(--report-section-title-font); text-transform: uppercase; letter-spacing: 0.04em; }
  .section-body { padding: 0; background: #ffffff; }
  .kv-table { width: 100%%; border-collapse: collapse; font-size: var(--report-font-value); }
  .kv-table tr { border-bottom: 1px solid #cbd5f5; }
  .kv-block { border-right: 1px solid #cbd5f5; padding: var(--report-block-padding); vertical-align: top; }
  .kv-block:last-child { border-right: none; }
  .kv-block--empty { background: #f8fafc; color: #94a3b8; min-height: 36px; }
  .kv-block--emphasis { background: #e2e8f0; font-weight: 600; }
  .kv-table--compact .kv-block, .kv-block--compact { padding: var(--report-block-padding-compact); }
  .kv-label { font-size: var(--report-font-label); font-weight: 700; letter-spacing: 0.08em; text-transform: uppercase; color: #475569; margin-bottom: 4px; }
  .kv-value { font-size: var(--report-font-value); color: #0f172a; }
  .kv-value--status { display: flex; align-items: center; }
  .kv-unit { margin-left: 4px; font-size: calc(var(--report-font-label) + 1px); color: #64748b; }
  .status-tag { display: inline-block; padding: 3px 10px; border-radius: 999px; font-weight: 600; text-transform: uppercase; font-size: calc(var(--report-font-label) + 1px); letter-spacing: 0.06em; }
  .status-pass { background: #10b981; color: #ffffff; }
  .status-fail { background: #ef4444; color: #ffffff; }
  .status-neutral { background: #e2e8f0; color: #1f2937; }
  .table-wrapper { overflow: hidden; }
  .structured-table { width: 100%%; border-collapse: collapse; font-size: var(--report-font-value); }
  .structured-table th { background: #e2e8f0; color: #0f172a; font-weight: 700; text-transform: uppercase; padding: var(--report-block-padding); border: 1px solid #1f2937; }
  .structured-table td { padding: var(--report-block-padding); border: 1px solid #1f2937; }
  .structured-table__empty { text-align: center; color: #94a3b8; font-style: italic; }
  .legacy-table { width: 100%%; border-collapse: collapse; font-size: var(--report-font-value); }
  .legacy-table th { background: #e2e8f0; text-align: left; padding: var(--report-block-padding); border: 1px solid #1f2937; width: 30%%; }
  .legacy-table td { padding: var(--report-block-padding); border: 1px solid #1f2937; }
  .legacy-photo { max-width: 120px; margin-right: 8px; border: 1px solid #cbd5f5; padding: 2px; }
  .photo-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(120px, 1fr)); gap: var(--report-photo-gap); padding: var(--report-photo-padding); }
  .photo-item { border: 1px solid #cbd5f5; padding: 8px; display: flex; justify-content: center; align-items: center; min-height: var(--report-photo-min-height); }
  .photo-item img { max-width: 100%%; max-height: var(--report-photo-min-height); object-fit: cover; }
  .photo-item--empty { background: #f8fafc; color: #94a3b8; font-style: italic; }
  .notes { padding: var(--report-photo-padding); font-size: var(--report-notes-font); line-height: 1.6; white-space: pre-wrap; min-height: 60px; }
  .report-footer { border-top: 2px solid #1f2937; padding-top: 12px; margin-top: var(--report-footer-spacing); font-size: var(--report-footer-font); color: #475569; display: flex; flex-direction: column; gap: 4px; }
  .report-footer strong { color: #0f172a; }
  .qr-block { display: flex; gap: 12px; align-items: center; margin-top: 4px; }
  .qr-block img { width: 88px; height: 88px; border: 1px solid #cbd5f5; padding: 4px; background: #fff; }
  .qr-info { font-size: calc(var(--report-font-label) + 1px); color: #475569; word-break: break-word; }
  .qr-info a { color: inherit; text-decoration: none; }
`, preset.cssVariables())
}

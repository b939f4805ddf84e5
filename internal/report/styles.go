package report

import (
	"strings"

	"github.com/inspekta-io/inspekta/internal/domain"
)

// =============================================================================
// Style Presets
// =============================================================================

// StylePreset bundles the spacing and typography tokens for one density
// scale. Every token is emitted as a --report-* CSS variable so the base
// stylesheet stays scale-agnostic.
type StylePreset struct {
	PagePadding         string
	ContainerPadding    string
	HeaderGap           string
	CompanyFont         string
	DocumentFont        string
	MetaFont            string
	MetaPadding         string
	FontBase            string
	ValueFont           string
	LabelFont           string
	SectionTitleFont    string
	SectionTitlePadding string
	SectionGap          string
	BlockPadding        string
	BlockPaddingCompact string
	PhotoMinHeight      string
	PhotoPadding        string
	PhotoGap            string
	NotesFont           string
	FooterFont          string
	FooterSpacing       string
}

var stylePresets = map[domain.StyleScale]StylePreset{
	domain.ScaleSmall: {
		PagePadding:         "20px",
		ContainerPadding:    "24px",
		HeaderGap:           "18px",
		CompanyFont:         "20px",
		DocumentFont:        "13px",
		MetaFont:            "11px",
		MetaPadding:         "5px 7px",
		FontBase:            "11px",
		ValueFont:           "11px",
		LabelFont:           "9px",
		SectionTitleFont:    "11px",
		SectionTitlePadding: "8px 10px",
		SectionGap:          "18px",
		BlockPadding:        "6px 8px",
		BlockPaddingCompact: "5px 7px",
		PhotoMinHeight:      "90px",
		PhotoPadding:        "12px",
		PhotoGap:            "10px",
		NotesFont:           "11px",
		FooterFont:          "10px",
		FooterSpacing:       "26px",
	},
	domain.ScaleMedium: {
		PagePadding:         "24px",
		ContainerPadding:    "32px",
		HeaderGap:           "24px",
		CompanyFont:         "22px",
		DocumentFont:        "16px",
		MetaFont:            "12px",
		MetaPadding:         "6px 8px",
		FontBase:            "12px",
		ValueFont:           "12px",
		LabelFont:           "10px",
		SectionTitleFont:    "13px",
		SectionTitlePadding: "10px 12px",
		SectionGap:          "24px",
		BlockPadding:        "10px 12px",
		BlockPaddingCompact: "8px 10px",
		PhotoMinHeight:      "120px",
		PhotoPadding:        "16px",
		PhotoGap:            "14px",
		NotesFont:           "12px",
		FooterFont:          "11px",
		FooterSpacing:       "32px",
	},
	domain.ScaleLarge: {
		PagePadding:         "28px",
		ContainerPadding:    "36px",
		HeaderGap:           "28px",
		CompanyFont:         "24px",
		DocumentFont:        "18px",
		MetaFont:            "13px",
		MetaPadding:         "7px 9px",
		FontBase:            "13px",
		ValueFont:           "13px",
		LabelFont:           "11px",
		SectionTitleFont:    "14px",
		SectionTitlePadding: "12px 14px",
		SectionGap:          "28px",
		BlockPadding:        "12px 14px",
		BlockPaddingCompact: "10px 12px",
		PhotoMinHeight:      "140px",
		PhotoPadding:        "18px",
		PhotoGap:            "18px",
		NotesFont:           "13px",
		FooterFont:          "12px",
		FooterSpacing:       "38px",
	},
}

// ResolvePreset returns the preset for a scale, falling back to medium for
// anything unrecognized.
func ResolvePreset(scale domain.StyleScale) StylePreset {
	if preset, ok := stylePresets[scale]; ok {
		return preset
	}
	return stylePresets[domain.ScaleMedium]
}

// ResolveScale walks the scale candidates in precedence order: the report's
// own style document first, then the template default, then medium. The
// first non-empty candidate decides; an unrecognized value resolves to
// medium rather than deferring to a lower-precedence candidate.
func ResolveScale(ctx *domain.ReportContext) domain.StyleScale {
	candidates := []string{ctx.Report.StyleScale()}
	if ctx.Template != nil {
		candidates = append(candidates, ctx.Template.Settings.ReportStyle.Scale)
	}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		scale, ok := domain.NormalizeScale(candidate)
		if !ok {
			return domain.ScaleMedium
		}
		return scale
	}
	return domain.ScaleMedium
}

func (p StylePreset) cssVariables() string {
	var b strings.Builder
	pairs := []struct{ name, value string }{
		{"--report-page-padding", p.PagePadding},
		{"--report-container-padding", p.ContainerPadding},
		{"--report-header-gap", p.HeaderGap},
		{"--report-company-font", p.CompanyFont},
		{"--report-document-font", p.DocumentFont},
		{"--report-meta-font", p.MetaFont},
		{"--report-meta-padding", p.MetaPadding},
		{"--report-font-base", p.FontBase},
		{"--report-font-value", p.ValueFont},
		{"--report-font-label", p.LabelFont},
		{"--report-section-title-font", p.SectionTitleFont},
		{"--report-section-title-padding", p.SectionTitlePadding},
		{"--report-section-gap", p.SectionGap},
		{"--report-block-padding", p.BlockPadding},
		{"--report-block-padding-compact", p.BlockPaddingCompact},
		{"--report-photo-min-height", p.PhotoMinHeight},
		{"--report-photo-padding", p.PhotoPadding},
		{"--report-photo-gap", p.PhotoGap},
		{"--report-notes-font", p.NotesFont},
		{"--report-footer-font", p.FooterFont},
		{"--report-footer-spacing", p.FooterSpacing},
	}
	for _, pair := range pairs {
		b.WriteString("    ")
		b.WriteString(pair.name)
		b.WriteString(": ")
		b.WriteString(pair.value)
		b.WriteString(";\n")
	}
	return b.String()
}

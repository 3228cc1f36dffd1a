package services

import (
	"fmt"
	"strings"
	"time"
)

const (
	DownloadPrefix  = "Lighthouse_Requirements_"
	TimestampLayout = "20060102_150405"
	exportTitle     = "Lighthouse Requirements"
)

type ExportFormat string

const (
	FormatText ExportFormat = "txt"
	FormatPDF  ExportFormat = "pdf"
	FormatDOCX ExportFormat = "docx"
)

var contentTypes = map[ExportFormat]string{
	FormatText: "text/plain",
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ParseFormat accepts txt, pdf or docx; empty means txt.
func ParseFormat(s string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if format == "" {
		return FormatText, nil
	}
	if _, ok := contentTypes[format]; !ok {
		return "", fmt.Errorf("unsupported download format %q (must be txt, pdf or docx)", s)
	}
	return format, nil
}

// DownloadName is Lighthouse_Requirements_<YYYYMMDD_HHMMSS>.<ext>.
func DownloadName(generatedAt time.Time, format ExportFormat) string {
	return DownloadPrefix + generatedAt.Format(TimestampLayout) + "." + string(format)
}

// ParseTimestamp reads a timestamp produced with TimestampLayout in local time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Exporter struct {
	pdf  *PDFService
	docx *DocxService
}

func NewExporter() *Exporter {
	return &Exporter{pdf: NewPDFService(), docx: NewDocxService()}
}

// Export renders result in format. The text format is the result bytes unchanged.
func (e *Exporter) Export(result string, generatedAt time.Time, format ExportFormat) (Download, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatText:
		data = []byte(result)
	case FormatPDF:
		data, err = e.pdf.Render(exportTitle, result, generatedAt)
	case FormatDOCX:
		data, err = e.docx.Render(exportTitle, result)
	default:
		return Download{}, fmt.Errorf("unsupported download format %q", format)
	}
	if err != nil {
		return Download{}, fmt.Errorf("export %s: %w", format, err)
	}

	return Download{
		Filename:    DownloadName(generatedAt, format),
		ContentType: contentTypes[format],
		Data:        data,
	}, nil
}

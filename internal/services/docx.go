package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName     = "Times New Roman"
	bodyFontSize = 12
)

type DocxService struct {
	tempDir string
}

func NewDocxService() *DocxService {
	return &DocxService{}
}

// Render converts analysis markdown to a styled .docx document.
func (s *DocxService) Render(title, markdown string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("create docx: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	for _, b := range parseBlocks(markdown) {
		p := doc.AddParagraph("")
		switch b.kind {
		case blockHeading:
			addStyledRun(p, b.text, true, uint64(headingSize(b.level)))
		case blockBullet:
			addRichText(p, "• "+b.text)
		default:
			addRichText(p, b.text)
		}
	}

	dir, err := os.MkdirTemp(s.tempDir, "lighthouse-docx-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "analysis.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	return data, nil
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(bodyFontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(bodyFontSize).Color("000000").Bold(true)
		}
	}
}

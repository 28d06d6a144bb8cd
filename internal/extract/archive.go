package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// xmlLayout names the XML elements (by local name) whose character data is text, and the
// elements that end a line.
type xmlLayout struct {
	text  map[string]bool
	block map[string]bool
}

var (
	// WordprocessingML: <w:t> runs inside <w:p> paragraphs; <w:br> breaks a line.
	wordLayout = xmlLayout{
		text:  map[string]bool{"t": true},
		block: map[string]bool{"p": true, "br": true},
	}
	// DrawingML (slides): <a:t> runs inside <a:p> paragraphs.
	slideLayout = xmlLayout{
		text:  map[string]bool{"t": true},
		block: map[string]bool{"p": true},
	}
	// OpenDocument: <text:p> and <text:h> blocks, with nested <text:span>.
	odfLayout = xmlLayout{
		text:  map[string]bool{"p": true, "h": true, "span": true},
		block: map[string]bool{"p": true, "h": true},
	}
)

// contentTypes is the subset of [Content_Types].xml used to locate the main document part.
type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

const (
	contentTypesPath    = "[Content_Types].xml"
	docxDefaultPath     = "word/document.xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	odfContentPath      = "content.xml"
	pptxSlidePrefix     = "ppt/slides/slide"
)

var errPartNotFound = errors.New("part not found")

func openZip(content []byte, format string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open %s: not a zip: %w", format, err)
	}
	return zr, nil
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, errPartNotFound)
}

// xmlText streams data and collects the character data of layout.text elements, writing a line
// break after each layout.block element.
func xmlText(data []byte, layout xmlLayout) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	var b strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if layout.text[t.Name.Local] {
				depth++
			}
		case xml.EndElement:
			if layout.text[t.Name.Local] && depth > 0 {
				depth--
			}
			if layout.block[t.Name.Local] && depth == 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// docxMainPart returns the main document path from [Content_Types].xml, or the default path.
func docxMainPart(zr *zip.Reader) string {
	data, err := readPart(zr, contentTypesPath)
	if err != nil {
		return docxDefaultPath
	}
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return docxDefaultPath
	}
	for _, o := range ct.Overrides {
		if o.ContentType == docxMainContentType {
			return strings.TrimPrefix(o.PartName, "/")
		}
	}
	return docxDefaultPath
}

func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	data, err := readPart(zr, docxMainPart(zr))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	return xmlText(data, wordLayout)
}

// extractPPTX reads slides in slide-number order.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	var slides []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, pptxSlidePrefix) && path.Ext(f.Name) == ".xml" {
			slides = append(slides, f.Name)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		if len(slides[i]) != len(slides[j]) {
			return len(slides[i]) < len(slides[j])
		}
		return slides[i] < slides[j]
	})
	texts := make([]string, 0, len(slides))
	for _, name := range slides {
		data, err := readPart(zr, name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: %w", err)
		}
		text, err := xmlText(data, slideLayout)
		if err != nil {
			return "", fmt.Errorf("extract PPTX %s: %w", name, err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// extractODT handles every OpenDocument package (text, presentation, spreadsheet): all keep
// their body in content.xml.
func extractODT(content []byte) (string, error) {
	zr, err := openZip(content, "OpenDocument")
	if err != nil {
		return "", err
	}
	data, err := readPart(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: %w", err)
	}
	return xmlText(data, odfLayout)
}

package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func wordDoc(body string) string {
	return `<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

func TestBytes_plain(t *testing.T) {
	e := NewExtractor(0)
	got := e.Bytes([]byte("Hello world\r\nLine 2\n"), ".txt")
	if !got.OK() {
		t.Fatalf("Bytes: %v", got.Err)
	}
	if got.Text != "Hello world\nLine 2" {
		t.Errorf("got %q", got.Text)
	}
	if got.Format != "text" {
		t.Errorf("format = %q", got.Format)
	}
}

func TestBytes_plainInvalidUTF8(t *testing.T) {
	got := NewExtractor(0).Bytes([]byte("hello\x80world"), ".md")
	if got.Text != "hello\ufffdworld" {
		t.Errorf("got %q", got.Text)
	}
}

func TestBytes_unknownExtensionIsPlain(t *testing.T) {
	got := NewExtractor(0).Bytes([]byte("raw content"), ".xyz")
	if got.Text != "raw content" || !got.OK() {
		t.Errorf("got %+v", got)
	}
}

func TestBytes_image(t *testing.T) {
	got := NewExtractor(0).Bytes([]byte{0x89, 'P', 'N', 'G'}, ".PNG")
	if !errors.Is(got.Err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", got.Err)
	}
	if got.Text != "" {
		t.Errorf("text should be empty, got %q", got.Text)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"１２０,０００ USD", "120,000 USD"},
		{"ﬁnal deed", "final deed"},
		{"a\x00b\x07c", "abc"},
		{"\ufefftitle", "title"},
		{"  line1\r\nline2\rline3\t \n", "line1\nline2\nline3"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got := NewExtractor(0).Bytes(buf.Bytes(), ".xlsx")
	if !got.OK() {
		t.Fatalf("Bytes: %v", got.Err)
	}
	if got.Text != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got.Text)
	}
}

func TestBytes_docx(t *testing.T) {
	content := zipOf(t, map[string]string{
		"word/document.xml": wordDoc(`<w:p><w:r><w:t>Title </w:t></w:r><w:r><w:t>deed</w:t></w:r></w:p>` +
			`<w:p w:rsidR="00AB"><w:r><w:t xml:space="preserve">Owner: A. Smith</w:t></w:r></w:p>`),
	})
	got := NewExtractor(0).Bytes(content, ".docx")
	if !got.OK() {
		t.Fatalf("Bytes: %v", got.Err)
	}
	if got.Text != "Title deed\nOwner: A. Smith" {
		t.Errorf("got %q", got.Text)
	}
}

func TestBytes_docxContentTypes(t *testing.T) {
	for _, override := range []string{
		`<Override PartName="/word/document2.xml" ContentType="` + docxMainContentType + `"/>`,
		`<Override ContentType="` + docxMainContentType + `" PartName="/word/document2.xml"/>`,
	} {
		content := zipOf(t, map[string]string{
			"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>` +
				`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + override + `</Types>`,
			"word/document2.xml": wordDoc(`<w:p><w:r><w:t>Custom path</w:t></w:r></w:p>`),
		})
		got := NewExtractor(0).Bytes(content, ".docx")
		if got.Text != "Custom path" {
			t.Errorf("got %+v", got)
		}
	}
}

func TestBytes_docxMissingDocument(t *testing.T) {
	content := zipOf(t, map[string]string{"other.xml": "<x/>"})
	got := NewExtractor(0).Bytes(content, ".docx")
	if !errors.Is(got.Err, errPartNotFound) {
		t.Errorf("err = %v, want part not found", got.Err)
	}
}

func TestBytes_notZip(t *testing.T) {
	for _, ext := range []string{".docx", ".pptx", ".odt", ".ods", ".odp"} {
		got := NewExtractor(0).Bytes([]byte("not a zip"), ext)
		if got.OK() || got.Text != "" {
			t.Errorf("%s: expected error, got %+v", ext, got)
		}
	}
}

func TestBytes_pptxSlideOrder(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="x"><a:p><a:r><a:t>` +
			text + `</a:t></a:r></a:p></p:sld>`
	}
	content := zipOf(t, map[string]string{
		"ppt/slides/slide10.xml":           slide("ten"),
		"ppt/slides/slide2.xml":            slide("two"),
		"ppt/slides/slide1.xml":            slide("one"),
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
	})
	got := NewExtractor(0).Bytes(content, ".pptx")
	if got.Text != "one\ntwo\nten" {
		t.Errorf("got %q (err %v)", got.Text, got.Err)
	}
}

func TestBytes_openDocument(t *testing.T) {
	body := `<office:document-content xmlns:office="o" xmlns:text="t" xmlns:table="tb"><office:body>` +
		`<text:h>Asset Register</text:h>` +
		`<text:p>Valuation <text:span>120,000</text:span> USD</text:p>` +
		`<table:table-cell><text:p>2021</text:p></table:table-cell>` +
		`</office:body></office:document-content>`
	content := zipOf(t, map[string]string{"content.xml": body})
	for _, ext := range []string{".odt", ".odp", ".ods"} {
		got := NewExtractor(0).Bytes(content, ext)
		if got.Text != "Asset Register\nValuation 120,000 USD\n2021" {
			t.Errorf("%s: got %q (err %v)", ext, got.Text, got.Err)
		}
	}

	missing := NewExtractor(0).Bytes(zipOf(t, map[string]string{"meta.xml": "<x/>"}), ".ods")
	if missing.OK() {
		t.Error("expected error for missing content.xml")
	}
}

func TestText_files(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "deed.txt")
	if err := os.WriteFile(plain, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	sheet := filepath.Join(dir, "data.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Invoice total")
	if err := f.SaveAs(sheet); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	e := NewExtractor(0)
	if got := e.Text(plain); got.Text != "File content" || !got.OK() {
		t.Errorf("plain: %+v", got)
	}
	if got := e.Text(sheet); got.Text != "Invoice total" || got.Format != "xlsx" {
		t.Errorf("xlsx: %+v", got)
	}
}

func TestText_neverFails(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(big, bytes.Repeat([]byte("a"), 64), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(16)
	for _, path := range []string{filepath.Join(dir, "missing.txt"), big} {
		got := e.Text(path)
		if got.OK() {
			t.Errorf("%s: expected error", path)
		}
		if got.Text != "" {
			t.Errorf("%s: text should be empty, got %q", path, got.Text)
		}
	}
}

func TestSupported(t *testing.T) {
	for ext, want := range map[string]bool{".PDF": true, ".docx": true, ".csv": true, ".jpg": false, ".exe": false} {
		if got := Supported(ext); got != want {
			t.Errorf("Supported(%q) = %v, want %v", ext, got, want)
		}
	}
}

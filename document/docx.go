package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
)

// Minimal WordprocessingML. The package zip needs exactly three parts:
// content types, the package relationship pointing at the document, and
// the document body itself.

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

type docRoot struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	Body    docBody  `xml:"w:body"`
}

type docBody struct {
	Content []any
}

type valAttr struct {
	Val string `xml:"w:val,attr"`
}

type runProps struct {
	XMLName xml.Name  `xml:"w:rPr"`
	Bold    *struct{} `xml:"w:b"`
	Color   *valAttr  `xml:"w:color"`
	Size    *valAttr  `xml:"w:sz"`
}

type runText struct {
	XMLName xml.Name `xml:"w:t"`
	Space   string   `xml:"xml:space,attr"`
	Text    string   `xml:",chardata"`
}

type docRun struct {
	XMLName xml.Name `xml:"w:r"`
	Props   *runProps
	Text    runText
}

type paraProps struct {
	XMLName xml.Name `xml:"w:pPr"`
	Justify *valAttr `xml:"w:jc"`
}

type paragraph struct {
	XMLName xml.Name `xml:"w:p"`
	Props   *paraProps
	Runs    []docRun
}

type tableCell struct {
	XMLName xml.Name `xml:"w:tc"`
	Para    paragraph
}

type tableRow struct {
	XMLName xml.Name `xml:"w:tr"`
	Cells   []tableCell
}

type docTable struct {
	XMLName xml.Name `xml:"w:tbl"`
	Rows    []tableRow
}

// Half-point font sizes (OOXML w:sz counts half points).
const (
	sizeTitle     = "48" // 24pt
	sizeHeading   = "28" // 14pt
	sizeBody      = "22" // 11pt
	sizeTimestamp = "18" // 9pt
	sizeFooter    = "16" // 8pt
)

const colorMuted = "808080"

func textRun(text, size string, bold bool, color string) docRun {
	props := &runProps{Size: &valAttr{Val: size}}
	if bold {
		props.Bold = &struct{}{}
	}
	if color != "" {
		props.Color = &valAttr{Val: color}
	}
	return docRun{
		Props: props,
		Text:  runText{Space: "preserve", Text: text},
	}
}

func simpleParagraph(runs ...docRun) paragraph {
	return paragraph{Runs: runs}
}

func centeredParagraph(runs ...docRun) paragraph {
	return paragraph{
		Props: &paraProps{Justify: &valAttr{Val: "center"}},
		Runs:  runs,
	}
}

func emptyParagraph() paragraph { return paragraph{} }

func metadataTable(rows [][2]string) docTable {
	t := docTable{}
	for _, r := range rows {
		t.Rows = append(t.Rows, tableRow{
			Cells: []tableCell{
				{Para: simpleParagraph(textRun(r[0], sizeBody, true, ""))},
				{Para: simpleParagraph(textRun(r[1], sizeBody, false, ""))},
			},
		})
	}
	return t
}

// writeDocx streams a complete .docx package to w.
func writeDocx(w io.Writer, body docBody) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := f.Write([]byte(p.content)); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}

	f, err := zw.Create("word/document.xml")
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}
	if _, err := f.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("write document header: %w", err)
	}
	doc := docRoot{XmlnsW: wordNamespace, Body: body}
	if err := xml.NewEncoder(f).Encode(doc); err != nil {
		return fmt.Errorf("encode document body: %w", err)
	}

	return zw.Close()
}

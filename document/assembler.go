// Package document renders transcript segments into a Word document.
// The .docx container is a small OOXML zip built directly with
// archive/zip and encoding/xml.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/transcription"
)

// Extension is the output document file extension.
const Extension = ".docx"

// Metadata is rendered into the document's information table.
type Metadata struct {
	SourceFile string
	Duration   float64
	Model      string
	Language   string
	Generated  time.Time
}

// OutputDocument describes the produced file.
type OutputDocument struct {
	Path string
}

// Config holds configuration for the Assembler.
type Config struct {
	// Timestamps prefixes each paragraph with the segment start time.
	Timestamps bool `json:"timestamps" yaml:"timestamps"`
	// ToolName appears in the document footer.
	ToolName string `json:"tool_name,omitempty" yaml:"tool_name"`
}

// Assembler writes transcript documents.
type Assembler struct {
	cfg Config
	log *logger.Logger
}

// New creates an Assembler.
func New(cfg Config) *Assembler {
	if cfg.ToolName == "" {
		cfg.ToolName = "transcriptor"
	}
	return &Assembler{cfg: cfg, log: logger.WithComponent("document")}
}

// OutputName derives the document filename from the input's base name.
func OutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + Extension
}

// Assemble renders segments into a .docx in destDir, one paragraph per
// segment in chronological order. The file appears atomically under its
// final name; an existing file of the same name is overwritten.
func (a *Assembler) Assemble(segments []transcription.Segment, meta Metadata, destDir string) (*OutputDocument, error) {
	dest := filepath.Join(destDir, OutputName(meta.SourceFile))

	tmp, err := os.CreateTemp(destDir, ".transcript-*"+Extension)
	if err != nil {
		return nil, errors.WriteFailed(dest, fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()

	writeErr := writeDocx(tmp, a.buildBody(segments, meta))
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		_ = os.Remove(tmpName)
		if writeErr != nil {
			return nil, errors.WriteFailed(dest, writeErr)
		}
		return nil, errors.WriteFailed(dest, closeErr)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return nil, errors.WriteFailed(dest, err)
	}

	a.log.Info("document written", logger.Fields("path", dest, "segments", len(segments)))
	return &OutputDocument{Path: dest}, nil
}

func (a *Assembler) buildBody(segments []transcription.Segment, meta Metadata) docBody {
	generated := meta.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	var content []any
	content = append(content,
		centeredParagraph(textRun("Transcript", sizeTitle, true, "")),
		emptyParagraph(),
		simpleParagraph(textRun("Details", sizeHeading, true, "")),
		metadataTable([][2]string{
			{"File", filepath.Base(meta.SourceFile)},
			{"Duration", FormatClock(meta.Duration)},
			{"Model", meta.Model},
			{"Language", meta.Language},
			{"Date", generated.Format("02/01/2006 15:04")},
		}),
		emptyParagraph(),
		simpleParagraph(textRun("Transcript", sizeHeading, true, "")),
		emptyParagraph(),
	)

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if a.cfg.Timestamps {
			content = append(content, simpleParagraph(
				textRun("["+FormatClock(seg.Start)+"] ", sizeTimestamp, false, colorMuted),
				textRun(text, sizeBody, false, ""),
			))
			continue
		}
		content = append(content, simpleParagraph(textRun(text, sizeBody, false, "")))
	}

	content = append(content,
		emptyParagraph(),
		centeredParagraph(textRun(
			fmt.Sprintf("Generated on %s by %s", generated.Format("02/01/2006 15:04"), a.cfg.ToolName),
			sizeFooter, false, colorMuted,
		)),
	)

	return docBody{Content: content}
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

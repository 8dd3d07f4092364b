package services

import (
	"archive/zip"
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type for text extraction")
	ErrNoText          = errors.New("no extractable text found")
)

// DefaultMaxExtractChars keeps submitted files from blowing up prompts.
const DefaultMaxExtractChars = 20000

type extractFunc func(path string) (string, error)

// FileExtractService reads the text out of submitted .txt, .md, .pdf and
// .docx files.
type FileExtractService struct {
	maxChars   int
	extractors map[string]extractFunc
}

func NewFileExtractService(maxChars int) *FileExtractService {
	if maxChars <= 0 {
		maxChars = DefaultMaxExtractChars
	}
	return &FileExtractService{
		maxChars: maxChars,
		extractors: map[string]extractFunc{
			".txt":  readPlain,
			".md":   readPlain,
			".pdf":  readPDF,
			".docx": readDOCX,
		},
	}
}

// ExtractTextFromPath returns the cleaned text of the file at path, cut to
// the configured number of characters.
func (s *FileExtractService) ExtractTextFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extract, ok := s.extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	raw, err := extract(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	text := tidyText(raw)
	if text == "" {
		return "", fmt.Errorf("%w in %s", ErrNoText, filepath.Base(path))
	}

	runes := []rune(text)
	if len(runes) > s.maxChars {
		text = string(runes[:s.maxChars])
	}
	return text, nil
}

func readPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readPDF(path string) (string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := doc.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readDOCX walks word/document.xml and keeps the character runs, turning
// paragraph ends and breaks into newlines.
func readDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	body, err := zr.Open("word/document.xml")
	if err != nil {
		return "", fmt.Errorf("docx body: %w", err)
	}
	defer body.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(body)
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// tidyText trims every line and collapses runs of blank lines into one.
func tidyText(s string) string {
	var out []string
	blank := false
	sc := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(s, "\r", "\n")))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

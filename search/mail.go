package search

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
	"github.com/richardlehane/mscfb"
)

// EMLExtractor extracts text from .eml files (MIME messages)
type EMLExtractor struct{}

// Extract implements the Extractor interface for EML files
func (e *EMLExtractor) Extract(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := messageLines(f)
	if err != nil {
		return nil, err
	}
	return singlePage(lines), nil
}

// messageLines parses one MIME message into its subject line followed by
// the body. Plain text is preferred; HTML bodies are stripped of tags.
func messageLines(r io.Reader) ([]string, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	var lines []string
	if subject := env.GetHeader("Subject"); subject != "" {
		lines = append(lines, "Subject: "+subject)
	}

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body, err = html2text.FromString(env.HTML, html2text.Options{OmitLinks: true})
		if err != nil {
			return nil, fmt.Errorf("failed to convert HTML body: %w", err)
		}
	}
	return append(lines, splitLines(strings.TrimRight(body, "\r\n"))...), nil
}

// MBOXExtractor extracts text from .mbox files. Each message is its own page.
type MBOXExtractor struct{}

// Extract implements the Extractor interface for MBOX files
func (e *MBOXExtractor) Extract(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := mbox.NewReader(f)
	var pages []Page
	for {
		msg, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(pages) == 0 {
				return nil, fmt.Errorf("failed to read mbox: %w", err)
			}
			break
		}

		content, err := io.ReadAll(msg)
		if err != nil {
			return nil, err
		}
		lines, err := messageLines(bytes.NewReader(content))
		if err != nil {
			// Keep page numbering aligned with message order
			lines = nil
		}
		pages = append(pages, Page{Number: len(pages) + 1, Lines: lines})
	}
	return pages, nil
}

// Outlook property streams holding the plain-text body
const (
	msgBodyUnicode = "__substg1.0_1000001F"
	msgBodyANSI    = "__substg1.0_1000001E"
	msgSubject     = "__substg1.0_0037001F"
)

// MSGExtractor extracts the subject and body of Outlook .msg files from
// their compound-file property streams
type MSGExtractor struct{}

// Extract implements the Extractor interface for MSG files
func (e *MSGExtractor) Extract(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cf, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open compound file: %w", err)
	}

	var subject, body, ansiBody string
	for ent, err := cf.Next(); err == nil; ent, err = cf.Next() {
		switch ent.Name {
		case msgSubject, msgBodyUnicode:
			data, rerr := io.ReadAll(ent)
			if rerr != nil {
				return nil, rerr
			}
			s, derr := decodeUTF16LE(data)
			if derr != nil {
				return nil, derr
			}
			if ent.Name == msgSubject && subject == "" {
				subject = s
			} else if ent.Name == msgBodyUnicode && body == "" {
				body = s
			}
		case msgBodyANSI:
			data, rerr := io.ReadAll(ent)
			if rerr != nil {
				return nil, rerr
			}
			if ansiBody == "" {
				ansiBody = string(bytes.TrimRight(data, "\x00"))
			}
		}
	}
	if body == "" {
		body = ansiBody
	}
	if subject == "" && body == "" {
		return nil, fmt.Errorf("no message body stream")
	}

	var lines []string
	if subject != "" {
		lines = append(lines, "Subject: "+subject)
	}
	return singlePage(append(lines, splitLines(body)...)), nil
}

package parser

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// RawMessage holds the parts extracted from a full RFC 5322 message source,
// as returned by the API's sources endpoint.
type RawMessage struct {
	Subject     string
	Date        time.Time
	From        string
	To          []string
	Text        string
	HTML        string
	Attachments []string // filenames
}

// ParseSource decodes a raw message source into its headers and body parts.
// Unparseable individual parts are skipped; the function only fails when the
// source itself is not a readable message.
func ParseSource(data string) (*RawMessage, error) {
	mr, err := mail.CreateReader(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read message source: %w", err)
	}

	raw := &RawMessage{}
	raw.Subject, _ = mr.Header.Subject()
	raw.Date, _ = mr.Header.Date()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		raw.From = from[0].Address
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		for _, a := range to {
			raw.To = append(raw.To, a.Address)
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw, fmt.Errorf("failed to read part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			switch {
			case strings.HasPrefix(ct, "text/html"):
				raw.HTML = string(body)
			case strings.HasPrefix(ct, "text/plain"):
				raw.Text = string(body)
			}
		case *mail.AttachmentHeader:
			if filename, err := h.Filename(); err == nil && filename != "" {
				raw.Attachments = append(raw.Attachments, filename)
			}
		}
	}

	return raw, nil
}

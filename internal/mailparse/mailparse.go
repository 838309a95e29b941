/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package mailparse turns a raw SMTP payload into the parts the rest of
// the service cares about: headers, text and HTML bodies, and named
// attachments. It is the only package that touches MIME directly.
package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Attachment is a named binary part of a parsed email.
type Attachment struct {
	Filename string
	Data     []byte
}

// Email is one fully parsed message. HTML and Text hold every body part
// of that type in the order they appeared; either may be empty.
type Email struct {
	Raw         []byte
	Subject     string
	From        string
	Date        string // RFC 3339, empty if the header is absent or invalid
	To          []string
	HTML        []string
	Text        []string
	Attachments []Attachment
}

// Parse reads a complete raw message. An unknown charset is tolerated,
// anything else that stops the reader fails the whole parse.
func Parse(raw []byte) (*Email, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("message.Read: %w", err)
	}

	mr := mail.NewReader(entity)
	header := mr.Header

	email := &Email{
		Raw:     raw,
		Subject: parseSubject(header),
		From:    parseFrom(header),
		Date:    parseDate(header),
		To:      parseTo(header),
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("mr.NextPart: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read body part: %w", err)
			}
			switch contentType(h) {
			case "text/html":
				email.HTML = append(email.HTML, string(body))
			case "text/plain":
				email.Text = append(email.Text, string(body))
			}

		case *mail.AttachmentHeader:
			// A part without a usable filename cannot be stored as a
			// named attachment, so it is skipped rather than rejected.
			name, err := h.Filename()
			if err != nil || name == "" {
				continue
			}
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read attachment %q: %w", name, err)
			}
			email.Attachments = append(email.Attachments, Attachment{
				Filename: name,
				Data:     body,
			})
		}
	}

	return email, nil
}

func parseSubject(h mail.Header) string {
	subject, err := h.Subject()
	if err != nil {
		return strings.TrimSpace(h.Get("Subject"))
	}
	return subject
}

func parseFrom(h mail.Header) string {
	if list, err := h.AddressList("From"); err == nil && len(list) > 0 {
		return list[0].Address
	}
	return strings.TrimSpace(h.Get("From"))
}

func parseDate(h mail.Header) string {
	date, err := h.Date()
	if err != nil || date.IsZero() {
		return ""
	}
	return date.Format(time.RFC3339)
}

func parseTo(h mail.Header) []string {
	list, err := h.AddressList("To")
	if err != nil {
		return nil
	}
	var to []string
	for _, addr := range list {
		if addr.Address != "" {
			to = append(to, addr.Address)
		}
	}
	return to
}

func contentType(h *mail.InlineHeader) string {
	t, _, err := h.ContentType()
	if err != nil {
		return "text/plain"
	}
	return t
}

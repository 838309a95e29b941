package mailparse

import (
	"strings"
	"testing"
)

func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParseMultipart(t *testing.T) {
	raw := crlf(
		"From: Alice <alice@example.org>",
		"To: Bob <bob@example.org>",
		"Subject: Mixed",
		"Date: Mon, 02 Jan 2006 15:04:05 -0700",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="frontier"`,
		"",
		"--frontier",
		"Content-Type: text/plain",
		"",
		"plain body",
		"--frontier",
		"Content-Type: text/html",
		"",
		"<p>html body</p>",
		"--frontier",
		"Content-Type: application/octet-stream",
		`Content-Disposition: attachment; filename="a.txt"`,
		"",
		"attachment bytes",
		"--frontier--",
		"",
	)

	email, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if email.Subject != "Mixed" {
		t.Errorf("subject = %q", email.Subject)
	}
	if email.From != "alice@example.org" {
		t.Errorf("from = %q", email.From)
	}
	if email.Date != "2006-01-02T15:04:05-07:00" {
		t.Errorf("date = %q", email.Date)
	}
	if len(email.To) != 1 || email.To[0] != "bob@example.org" {
		t.Errorf("to = %v", email.To)
	}
	if len(email.Text) != 1 || email.Text[0] != "plain body" {
		t.Errorf("text = %q", email.Text)
	}
	if len(email.HTML) != 1 || email.HTML[0] != "<p>html body</p>" {
		t.Errorf("html = %q", email.HTML)
	}
	if len(email.Attachments) != 1 {
		t.Fatalf("attachments = %v", email.Attachments)
	}
	if email.Attachments[0].Filename != "a.txt" {
		t.Errorf("attachment name = %q", email.Attachments[0].Filename)
	}
	if string(email.Attachments[0].Data) != "attachment bytes" {
		t.Errorf("attachment data = %q", email.Attachments[0].Data)
	}
	if string(email.Raw) != string(raw) {
		t.Error("raw bytes should be kept verbatim")
	}
}

func TestParseSinglePart(t *testing.T) {
	raw := crlf(
		"From: a@b",
		"To: x@h",
		"Subject: Hello",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"just text",
	)

	email, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(email.Text) != 1 || email.Text[0] != "just text" {
		t.Errorf("text = %q", email.Text)
	}
	if len(email.HTML) != 0 {
		t.Errorf("html = %q", email.HTML)
	}
	if email.Date != "" {
		t.Errorf("date = %q, want empty for missing header", email.Date)
	}
}

func TestParseMissingHeaders(t *testing.T) {
	raw := crlf(
		"Content-Type: text/plain",
		"",
		"body",
	)

	email, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if email.Subject != "" || email.From != "" || len(email.To) != 0 {
		t.Errorf("email = %+v, want empty headers", email)
	}
}

func TestParseGarbageFails(t *testing.T) {
	if _, err := Parse([]byte("this is not an email")); err == nil {
		t.Fatal("garbage should not parse")
	}
}

func TestParseSkipsAttachmentWithoutFilename(t *testing.T) {
	raw := crlf(
		"From: a@b",
		"Subject: NoName",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="b"`,
		"",
		"--b",
		"Content-Type: application/octet-stream",
		"Content-Disposition: attachment",
		"",
		"nameless",
		"--b--",
		"",
	)

	email, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(email.Attachments) != 0 {
		t.Errorf("attachments = %v, want none", email.Attachments)
	}
}

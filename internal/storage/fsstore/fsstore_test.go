package fsstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mailhole/mailhole/internal/mailparse"
	"github.com/mailhole/mailhole/internal/storage"
)

func testEmail() *mailparse.Email {
	return &mailparse.Email{
		Raw:     []byte("raw message bytes"),
		Subject: "S",
		From:    "a@b",
		HTML:    []string{"<p>x</p>"},
		Attachments: []mailparse.Attachment{
			{Filename: "a.txt", Data: []byte("attachment bytes")},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestCreateMessageLayout(t *testing.T) {
	store := newTestStore(t)

	if err := store.CreateMessage("new@host", "1000", testEmail(), "S"); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	base := filepath.Join(store.Root(), "new@host", "1000")
	for _, name := range []string{"metadata.json", "body.raw", "body.html", "body.text"} {
		if _, err := os.Stat(filepath.Join(base, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(base, "attachments", "a.txt"))
	if err != nil {
		t.Fatalf("read attachment: %v", err)
	}
	if string(data) != "attachment bytes" {
		t.Errorf("attachment content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(base, "read")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("new message should have no read marker, stat err = %v", err)
	}
}

func TestCreateMessageRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.CreateMessage("new@host", "1000", testEmail(), "S"); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	box, err := store.Mailbox("new@host")
	if err != nil {
		t.Fatalf("Mailbox: %v", err)
	}
	if box == nil {
		t.Fatal("mailbox should exist after first delivery")
	}
	unread, err := box.Unread()
	if err != nil {
		t.Fatalf("Unread: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread = %d, want 1", unread)
	}

	msg, err := box.Message("1000")
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if msg == nil {
		t.Fatal("message should exist")
	}

	meta, err := msg.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.ID != "1000" || meta.Subject != "S" || meta.From != "a@b" {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Date != "" {
		t.Errorf("date should be empty, got %q", meta.Date)
	}

	html, err := msg.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if html == nil || *html != "<p>x</p>" {
		t.Errorf("html = %v", html)
	}
	text, err := msg.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text == nil || *text != "" {
		t.Errorf("text file should exist and be empty, got %v", text)
	}
	raw, err := msg.Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if string(raw) != "raw message bytes" {
		t.Errorf("raw = %q", raw)
	}

	atts, err := msg.Attachments()
	if err != nil {
		t.Fatalf("Attachments: %v", err)
	}
	if len(atts) != 1 || atts[0].Name() != "a.txt" {
		t.Fatalf("attachments = %v", atts)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.CreateMessage("u@h", "1", testEmail(), "S"); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	box, _ := store.Mailbox("u@h")
	msg, _ := box.Message("1")

	read, err := msg.Read()
	if err != nil || read {
		t.Fatalf("fresh message read = %v, err = %v", read, err)
	}
	for i := 0; i < 2; i++ {
		if err := msg.MarkRead(); err != nil {
			t.Fatalf("MarkRead #%d: %v", i+1, err)
		}
	}
	read, err = msg.Read()
	if err != nil || !read {
		t.Fatalf("after MarkRead read = %v, err = %v", read, err)
	}
	unread, err := box.Unread()
	if err != nil || unread != 0 {
		t.Fatalf("unread = %d, err = %v", unread, err)
	}
}

func TestMissingMailbox(t *testing.T) {
	store := newTestStore(t)
	box, err := store.Mailbox("absent@host")
	if err != nil {
		t.Fatalf("Mailbox: %v", err)
	}
	if box != nil {
		t.Fatal("absent mailbox should be nil, not an error")
	}
}

func TestMessageIDCollision(t *testing.T) {
	store := newTestStore(t)
	if err := store.CreateMessage("u@h", "1", testEmail(), "S"); err != nil {
		t.Fatalf("first CreateMessage: %v", err)
	}
	err := store.CreateMessage("u@h", "1", testEmail(), "S")
	if err == nil {
		t.Fatal("second CreateMessage with same id should fail")
	}
	if !errors.Is(err, os.ErrExist) {
		t.Errorf("collision should wrap os.ErrExist, got %v", err)
	}
	var serr *storage.Error
	if !errors.As(err, &serr) || serr.Kind != storage.KindDirCreate {
		t.Errorf("collision error = %v, want DirCreate", err)
	}
}

func TestMailboxesIgnoreStrayFiles(t *testing.T) {
	store := newTestStore(t)
	if err := store.CreateMessage("u@h", "1", testEmail(), "S"); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Root(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	boxes, err := store.Mailboxes()
	if err != nil {
		t.Fatalf("Mailboxes: %v", err)
	}
	if len(boxes) != 1 || boxes[0].ID() != "u@h" {
		t.Fatalf("boxes = %v", boxes)
	}
}

func TestNamesCannotEscapeRoot(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		box, err := store.Mailbox(name)
		if err != nil || box != nil {
			t.Errorf("Mailbox(%q) = %v, %v; want nil, nil", name, box, err)
		}
		if err := store.CreateMessage(name, "1", testEmail(), "S"); err == nil {
			t.Errorf("CreateMessage(%q) should fail", name)
		}
	}
}

func TestMailboxOccupiedByFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(filepath.Join(store.Root(), "u@h"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := store.CreateMessage("u@h", "1", testEmail(), "S")
	if err == nil {
		t.Fatal("CreateMessage over a plain file should fail")
	}
	var serr *storage.Error
	if !errors.As(err, &serr) || serr.Kind != storage.KindDirCreate {
		t.Errorf("error = %v, want DirCreate", err)
	}
	// The file also does not count as a mailbox.
	box, err := store.Mailbox("u@h")
	if err != nil || box != nil {
		t.Errorf("Mailbox over file = %v, %v; want nil, nil", box, err)
	}
}

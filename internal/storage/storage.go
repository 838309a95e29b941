/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package storage defines the repository surface over captured mail.
// Callers never see paths; they see mailboxes, messages and attachments
// addressed by id.
package storage

import "github.com/mailhole/mailhole/internal/mailparse"

// Metadata is the persisted per-message header summary.
type Metadata struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date,omitempty"`
}

type Store interface {
	// Mailboxes enumerates every mailbox currently on disk.
	Mailboxes() ([]Mailbox, error)
	// Mailbox returns the mailbox with the given id, or nil if there
	// is no such mailbox.
	Mailbox(id string) (Mailbox, error)
	// CreateMessage stores one copy of a parsed email as message `id`
	// inside `mailbox`, creating the mailbox if needed. The message
	// becomes visible as a unit: a failed creation is cleaned up on a
	// best-effort basis and the error returned unchanged.
	CreateMessage(mailbox, id string, email *mailparse.Email, subject string) error
}

type Mailbox interface {
	ID() string
	// Messages enumerates every message in the mailbox. A single
	// unreadable entry fails the whole enumeration.
	Messages() ([]Message, error)
	// Message returns the message with the given id, or nil if there
	// is no such message.
	Message(id string) (Message, error)
	// Unread counts the messages without a read marker. Always
	// recomputed, never cached.
	Unread() (int, error)
}

type Message interface {
	ID() string
	Metadata() (*Metadata, error)
	// HTML and Text return nil when the corresponding body file does
	// not exist, and an empty string when it exists but is empty.
	HTML() (*string, error)
	Text() (*string, error)
	Raw() ([]byte, error)
	Read() (bool, error)
	// MarkRead creates the read marker. Marking an already-read
	// message is a no-op.
	MarkRead() error
	Attachments() ([]Attachment, error)
}

type Attachment interface {
	Name() string
	Data() ([]byte, error)
}

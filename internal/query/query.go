/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package query is the read side of the service: the operations the
// viewer calls, expressed over the storage repository. It adds no
// logic of its own beyond shaping results and the view-implies-read
// side effect.
package query

import (
	"sort"

	"github.com/mailhole/mailhole/internal/events"
	"github.com/mailhole/mailhole/internal/storage"
)

type Facade struct {
	Store storage.Store
	Bus   *events.Bus
}

// MailboxSummary is one row of the mailbox list.
type MailboxSummary struct {
	ID     string `json:"id"`
	Unread int    `json:"unread"`
}

// MessageEntry is one row of a mailbox's message list.
type MessageEntry struct {
	Subject string `json:"subject"`
	ID      string `json:"id"`
	Read    bool   `json:"read"`
}

// Mail is one fetched message with all of its parts.
type Mail struct {
	HTML        *string          `json:"html"`
	Text        *string          `json:"text"`
	Raw         *string          `json:"raw"`
	Attachments []string         `json:"attachments"`
	Metadata    storage.Metadata `json:"metadata"`
}

// Mailboxes lists every mailbox with its unread count, ordered by id.
func (f *Facade) Mailboxes() ([]MailboxSummary, error) {
	boxes, err := f.Store.Mailboxes()
	if err != nil {
		return nil, err
	}
	summaries := make([]MailboxSummary, 0, len(boxes))
	for _, box := range boxes {
		unread, err := box.Unread()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, MailboxSummary{
			ID:     box.ID(),
			Unread: unread,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Messages lists a mailbox newest-first. The second return is false
// when the mailbox does not exist.
func (f *Facade) Messages(mailbox string) ([]MessageEntry, bool, error) {
	box, err := f.Store.Mailbox(mailbox)
	if err != nil {
		return nil, false, err
	}
	if box == nil {
		return nil, false, nil
	}
	msgs, err := box.Messages()
	if err != nil {
		return nil, true, err
	}
	entries := make([]MessageEntry, 0, len(msgs))
	for _, msg := range msgs {
		read, err := msg.Read()
		if err != nil {
			return nil, true, err
		}
		meta, err := msg.Metadata()
		if err != nil {
			return nil, true, err
		}
		entries = append(entries, MessageEntry{
			Subject: meta.Subject,
			ID:      meta.ID,
			Read:    read,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
	return entries, true, nil
}

// Message fetches one message in full. Fetching an unread message
// marks it read before the content is returned and publishes a
// read-state event for the mailbox; fetching it again does neither.
func (f *Facade) Message(mailbox, id string) (*Mail, bool, error) {
	msg, ok, err := f.message(mailbox, id)
	if err != nil || !ok {
		return nil, ok, err
	}

	read, err := msg.Read()
	if err != nil {
		return nil, true, err
	}
	if !read {
		if err := msg.MarkRead(); err != nil {
			return nil, true, err
		}
		f.Bus.Publish(events.Event{
			Kind:     events.KindRead,
			Receiver: mailbox,
		})
	}

	html, err := msg.HTML()
	if err != nil {
		return nil, true, err
	}
	text, err := msg.Text()
	if err != nil {
		return nil, true, err
	}
	// The store writes a body file even when the message had no parts
	// of that type; an empty body reads as "no body" here.
	html = emptyToNil(html)
	text = emptyToNil(text)
	rawBytes, err := msg.Raw()
	if err != nil {
		return nil, true, err
	}
	raw := string(rawBytes)

	atts, err := msg.Attachments()
	if err != nil {
		return nil, true, err
	}
	names := make([]string, 0, len(atts))
	for _, att := range atts {
		names = append(names, att.Name())
	}

	meta, err := msg.Metadata()
	if err != nil {
		return nil, true, err
	}

	return &Mail{
		HTML:        html,
		Text:        text,
		Raw:         &raw,
		Attachments: names,
		Metadata:    *meta,
	}, true, nil
}

// Attachment fetches the bytes of one named attachment. The second
// return is false when the mailbox, message or attachment is absent.
func (f *Facade) Attachment(mailbox, id, name string) ([]byte, bool, error) {
	msg, ok, err := f.message(mailbox, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	atts, err := msg.Attachments()
	if err != nil {
		return nil, true, err
	}
	for _, att := range atts {
		if att.Name() == name {
			data, err := att.Data()
			if err != nil {
				return nil, true, err
			}
			return data, true, nil
		}
	}
	return nil, false, nil
}

func emptyToNil(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}

func (f *Facade) message(mailbox, id string) (storage.Message, bool, error) {
	box, err := f.Store.Mailbox(mailbox)
	if err != nil {
		return nil, false, err
	}
	if box == nil {
		return nil, false, nil
	}
	msg, err := box.Message(id)
	if err != nil {
		return nil, false, err
	}
	if msg == nil {
		return nil, false, nil
	}
	return msg, true, nil
}

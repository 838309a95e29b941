/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package smtpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-smtp"

	"github.com/mailhole/mailhole/internal/events"
	"github.com/mailhole/mailhole/internal/mailparse"
	"github.com/mailhole/mailhole/internal/utils"
)

// idCollisionRetries bounds how many disambiguating suffixes are tried
// when two deliveries for the same recipient land in the same
// millisecond.
const idCollisionRetries = 16

// Session is the state of one SMTP transaction. The whole payload is
// buffered in memory before parsing; this is a debugging tool, not an
// MTA, and imposes no size cap of its own.
type Session struct {
	backend *Backend
	state   *smtp.ConnectionState
	from    string
	rcpt    []string
	buffer  bytes.Buffer
}

func (s *Session) Mail(from string, opts smtp.MailOptions) error {
	s.rcpt = s.rcpt[:0]
	s.buffer.Reset()
	s.from = from
	return nil
}

func (s *Session) Rcpt(to string) error {
	s.rcpt = append(s.rcpt, to)
	return nil
}

// Data ingests the transaction payload: parse, resolve recipients,
// store one copy per recipient, publish one event per stored copy.
// Only a parse failure or an unresolvable recipient list rejects the
// transaction; a storage failure for one recipient is logged and the
// others still get their copy.
func (s *Session) Data(r io.Reader) error {
	defer s.buffer.Reset()

	if _, err := s.buffer.ReadFrom(r); err != nil {
		return fmt.Errorf("read message data: %w", err)
	}

	email, err := mailparse.Parse(s.buffer.Bytes())
	if err != nil {
		s.backend.Log.Warnf("Rejecting unparseable message from %s: %v", remoteAddr(s.state), err)
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Could not parse message",
		}
	}

	receivers := s.receivers(email)
	if len(receivers) == 0 {
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 1, 3},
			Message:      "No recipients given and no To header present",
		}
	}

	// One id and one subject for the whole transaction, shared by
	// every recipient's copy.
	id := strconv.FormatInt(time.Now().UnixMilli(), 10)
	subject := email.Subject
	if subject == "" {
		subject = id
	}

	for _, receiver := range receivers {
		storedID, err := s.store(receiver, id, email, subject)
		if err != nil {
			s.backend.Log.Errorf("Failed to store message %s for %q: %v", id, receiver, err)
			continue
		}
		s.backend.Log.Infof("Stored message %s for %q", storedID, receiver)
		s.backend.Bus.Publish(events.Event{
			Kind: events.KindDelivered,
			Obj: &events.MessageSummary{
				Subject: subject,
				ID:      storedID,
				Read:    false,
			},
			Receiver: receiver,
		})
	}

	return nil
}

// receivers resolves the final recipient list: the addresses declared
// in the transaction if there were any, otherwise whatever the To
// header of the message itself names.
func (s *Session) receivers(email *mailparse.Email) []string {
	var receivers []string
	if len(s.rcpt) > 0 {
		for _, rcpt := range s.rcpt {
			receivers = append(receivers, utils.ExtractAddress(rcpt))
		}
		return receivers
	}
	for _, to := range email.To {
		receivers = append(receivers, utils.ExtractAddress(to))
	}
	return receivers
}

// store writes one recipient's copy, retrying with a numeric suffix
// when the millisecond id is already taken in that mailbox.
func (s *Session) store(receiver, id string, email *mailparse.Email, subject string) (string, error) {
	attempt := id
	for n := 1; ; n++ {
		err := s.backend.Store.CreateMessage(receiver, attempt, email, subject)
		if err == nil {
			return attempt, nil
		}
		if !errors.Is(err, os.ErrExist) || n > idCollisionRetries {
			return "", err
		}
		attempt = fmt.Sprintf("%s-%d", id, n)
	}
}

func (s *Session) Reset() {
	s.rcpt = s.rcpt[:0]
	s.from = ""
	s.buffer.Reset()
}

func (s *Session) Logout() error {
	return nil
}

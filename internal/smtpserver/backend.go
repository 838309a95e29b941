/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package smtpserver

import (
	"github.com/emersion/go-smtp"
	"github.com/gologme/log"

	"github.com/mailhole/mailhole/internal/events"
	"github.com/mailhole/mailhole/internal/storage"
)

// Backend hands every inbound connection its own session. Sessions
// share nothing but the store and the bus, both safe for concurrent
// use.
type Backend struct {
	Log   *log.Logger
	Store storage.Store
	Bus   *events.Bus
}

// Login accepts any credentials. This is a capture tool: senders that
// insist on authenticating should not be turned away.
func (b *Backend) Login(state *smtp.ConnectionState, username, password string) (smtp.Session, error) {
	b.Log.Debugf("SMTP login as %q from %s", username, remoteAddr(state))
	return b.newSession(state), nil
}

func (b *Backend) AnonymousLogin(state *smtp.ConnectionState) (smtp.Session, error) {
	return b.newSession(state), nil
}

func (b *Backend) newSession(state *smtp.ConnectionState) *Session {
	return &Session{
		backend: b,
		state:   state,
	}
}

func remoteAddr(state *smtp.ConnectionState) string {
	if state == nil || state.RemoteAddr == nil {
		return "unknown"
	}
	return state.RemoteAddr.String()
}

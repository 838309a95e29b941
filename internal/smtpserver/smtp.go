/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package smtpserver

import (
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

type SMTPServer struct {
	server  *smtp.Server
	backend *Backend
}

// NewSMTPServer builds the listener that accepts deliveries. Each
// accepted connection gets an independent session from the backend;
// one failed session never stops the acceptor.
func NewSMTPServer(backend *Backend, addr, domain string) *SMTPServer {
	server := smtp.NewServer(backend)
	server.Addr = addr
	server.Domain = domain
	server.MaxRecipients = 50
	server.AllowInsecureAuth = true
	// LOGIN for older clients; credentials are never checked.
	server.EnableAuth(sasl.Login, func(conn *smtp.Conn) sasl.Server {
		return sasl.NewLoginServer(func(username, password string) error {
			return nil
		})
	})
	return &SMTPServer{
		server:  server,
		backend: backend,
	}
}

func (s *SMTPServer) ListenAndServe() error {
	s.backend.Log.Infof("Listening for SMTP on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *SMTPServer) Close() error {
	return s.server.Close()
}

/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package httpserver exposes the read side of the service over HTTP:
// the query API the viewer polls, the attachment download path and the
// server-sent event stream that spares the viewer from polling.
package httpserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gologme/log"

	"github.com/mailhole/mailhole/internal/events"
	"github.com/mailhole/mailhole/internal/query"
)

type HTTPServer struct {
	app    *fiber.App
	addr   string
	log    *log.Logger
	facade *query.Facade
	bus    *events.Bus
}

func NewHTTPServer(facade *query.Facade, bus *events.Bus, logger *log.Logger, addr string) *HTTPServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "mailhole",
	})

	s := &HTTPServer{
		app:    app,
		addr:   addr,
		log:    logger,
		facade: facade,
		bus:    bus,
	}

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/api/mailboxes", s.handleMailboxes)
	app.Get("/api/mailboxes/:mailbox/messages", s.handleMessages)
	app.Get("/api/mailboxes/:mailbox/messages/:id", s.handleMessage)
	app.Get("/data/:mailbox/:id/attachments/:name", s.handleAttachment)
	app.Get("/sse", s.handleSSE)

	return s
}

func (s *HTTPServer) Listen() error {
	s.log.Infof("Listening for HTTP on %s", s.addr)
	return s.app.Listen(s.addr)
}

func (s *HTTPServer) Shutdown() error {
	return s.app.Shutdown()
}

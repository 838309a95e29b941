/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package httpserver

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) handleMailboxes(c *fiber.Ctx) error {
	mailboxes, err := s.facade.Mailboxes()
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(mailboxes)
}

func (s *HTTPServer) handleMessages(c *fiber.Ctx) error {
	mailbox := param(c, "mailbox")

	messages, ok, err := s.facade.Messages(mailbox)
	if err != nil {
		return s.serverError(c, err)
	}
	if !ok {
		return notFound(c, "mailbox not found")
	}
	return c.JSON(messages)
}

func (s *HTTPServer) handleMessage(c *fiber.Ctx) error {
	mailbox := param(c, "mailbox")
	id := param(c, "id")

	mail, ok, err := s.facade.Message(mailbox, id)
	if err != nil {
		return s.serverError(c, err)
	}
	if !ok {
		return notFound(c, "message not found")
	}
	return c.JSON(mail)
}

func (s *HTTPServer) handleAttachment(c *fiber.Ctx) error {
	mailbox := param(c, "mailbox")
	id := param(c, "id")
	name := param(c, "name")

	data, ok, err := s.facade.Attachment(mailbox, id, name)
	if err != nil {
		return s.serverError(c, err)
	}
	if !ok {
		return notFound(c, "attachment not found")
	}
	c.Attachment(name)
	return c.Send(data)
}

func (s *HTTPServer) serverError(c *fiber.Ctx, err error) error {
	s.log.Errorf("Query failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "internal server error",
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error: msg,
	})
}

// param returns a route parameter with percent-encoding undone, so
// that mailbox ids like "user%40host" address the same mailbox as
// "user@host".
func param(c *fiber.Ctx, name string) string {
	value := c.Params(name)
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}

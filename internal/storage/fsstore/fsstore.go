/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package fsstore keeps captured mail in a plain directory tree. The
// tree is the database: one directory per mailbox under the root, one
// directory per message inside it.
//
//	<root>/<recipient>/<id>/
//	    metadata.json
//	    body.raw
//	    body.html
//	    body.text
//	    read
//	    attachments/<filename>
package fsstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mailhole/mailhole/internal/mailparse"
	"github.com/mailhole/mailhole/internal/storage"
)

const (
	metadataFile   = "metadata.json"
	rawFile        = "body.raw"
	htmlFile       = "body.html"
	textFile       = "body.text"
	readMarkerFile = "read"
	attachmentsDir = "attachments"
)

type Store struct {
	root string
}

// New opens a store rooted at the given directory, creating it if it
// does not exist yet.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, storage.WrapError(storage.KindDirCreate, root, err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Mailboxes() ([]storage.Mailbox, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, storage.WrapError(storage.KindDirRead, s.root, err)
	}
	var boxes []storage.Mailbox
	for _, entry := range entries {
		// Stray files under the root are not mailboxes.
		if !entry.IsDir() {
			continue
		}
		boxes = append(boxes, &mailboxDir{path: filepath.Join(s.root, entry.Name())})
	}
	return boxes, nil
}

func (s *Store) Mailbox(id string) (storage.Mailbox, error) {
	if !validName(id) {
		return nil, nil
	}
	path := filepath.Join(s.root, id)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.WrapError(storage.KindFileMetadata, path, err)
	}
	if !info.IsDir() {
		return nil, nil
	}
	return &mailboxDir{path: path}, nil
}

var errNotDirectory = errors.New("existing entry is not a directory")

func (s *Store) CreateMessage(mailbox, id string, email *mailparse.Email, subject string) error {
	if !validName(mailbox) {
		return storage.WrapError(storage.KindDirCreate, mailbox, errInvalidName)
	}
	if !validName(id) {
		return storage.WrapError(storage.KindDirCreate, id, errInvalidName)
	}

	boxPath := filepath.Join(s.root, mailbox)
	if err := ensureDir(boxPath); err != nil {
		return err
	}

	msgPath := filepath.Join(boxPath, id)
	if err := os.Mkdir(msgPath, 0o755); err != nil {
		return storage.WrapError(storage.KindDirCreate, msgPath, err)
	}

	if err := writeMessage(msgPath, id, email, subject); err != nil {
		// Best-effort cleanup of the half-written message only; the
		// mailbox itself stays, whatever else it holds.
		_ = os.RemoveAll(msgPath)
		return err
	}
	return nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(path, 0o755); err != nil {
			return storage.WrapError(storage.KindDirCreate, path, err)
		}
		return nil
	}
	if err != nil {
		return storage.WrapError(storage.KindFileMetadata, path, err)
	}
	if !info.IsDir() {
		return storage.WrapError(storage.KindDirCreate, path, errNotDirectory)
	}
	return nil
}

func writeMessage(msgPath, id string, email *mailparse.Email, subject string) error {
	metaPath := filepath.Join(msgPath, metadataFile)
	meta := &storage.Metadata{
		ID:      id,
		Subject: subject,
		From:    email.From,
		Date:    email.Date,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return storage.WrapError(storage.KindSerdeWrite, metaPath, err)
	}
	if err := writeFile(metaPath, data); err != nil {
		return err
	}

	if err := writeParts(filepath.Join(msgPath, htmlFile), email.HTML); err != nil {
		return err
	}
	if err := writeParts(filepath.Join(msgPath, textFile), email.Text); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(msgPath, rawFile), email.Raw); err != nil {
		return err
	}

	attPath := filepath.Join(msgPath, attachmentsDir)
	if err := os.Mkdir(attPath, 0o755); err != nil {
		return storage.WrapError(storage.KindDirCreate, attPath, err)
	}
	for _, att := range email.Attachments {
		name := filepath.Base(filepath.Clean(att.Filename))
		if name == "." || name == ".." || name == string(filepath.Separator) {
			continue
		}
		if err := writeFile(filepath.Join(attPath, name), att.Data); err != nil {
			return err
		}
	}
	return nil
}

// writeParts concatenates all body parts of one type into a single
// file. The file is written even when there are no parts.
func writeParts(path string, parts []string) error {
	f, err := os.Create(path)
	if err != nil {
		return storage.WrapError(storage.KindFileOpen, path, err)
	}
	for _, part := range parts {
		if _, err := f.WriteString(part); err != nil {
			f.Close()
			return storage.WrapError(storage.KindFileWrite, path, err)
		}
	}
	if err := f.Close(); err != nil {
		return storage.WrapError(storage.KindFileWrite, path, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return storage.WrapError(storage.KindFileOpen, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return storage.WrapError(storage.KindFileWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return storage.WrapError(storage.KindFileWrite, path, err)
	}
	return nil
}

var errInvalidName = errors.New("invalid mailbox or message name")

// validName rejects anything that could escape the store root when
// joined onto a path.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	return true
}

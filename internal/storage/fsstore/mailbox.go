/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsstore

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/mailhole/mailhole/internal/storage"
)

type mailboxDir struct {
	path string
}

func (m *mailboxDir) ID() string {
	return filepath.Base(m.path)
}

func (m *mailboxDir) Messages() ([]storage.Message, error) {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		return nil, storage.WrapError(storage.KindDirRead, m.path, err)
	}
	var msgs []storage.Message
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		msgs = append(msgs, &messageDir{path: filepath.Join(m.path, entry.Name())})
	}
	return msgs, nil
}

func (m *mailboxDir) Message(id string) (storage.Message, error) {
	if !validName(id) {
		return nil, nil
	}
	path := filepath.Join(m.path, id)
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
	return &messageDir{path: path}, nil
}

func (m *mailboxDir) Unread() (int, error) {
	msgs, err := m.Messages()
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, msg := range msgs {
		read, err := msg.Read()
		if err != nil {
			return 0, err
		}
		if !read {
			unread++
		}
	}
	return unread, nil
}

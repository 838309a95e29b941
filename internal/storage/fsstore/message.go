/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package fsstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mailhole/mailhole/internal/storage"
)

type messageDir struct {
	path string
}

func (m *messageDir) ID() string {
	return filepath.Base(m.path)
}

func (m *messageDir) Metadata() (*storage.Metadata, error) {
	path := filepath.Join(m.path, metadataFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, storage.WrapError(storage.KindFileOpen, path, err)
	}
	defer f.Close()

	var meta storage.Metadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return nil, storage.WrapError(storage.KindSerdeRead, path, err)
	}
	return &meta, nil
}

func (m *messageDir) HTML() (*string, error) {
	return m.bodyPart(htmlFile)
}

func (m *messageDir) Text() (*string, error) {
	return m.bodyPart(textFile)
}

func (m *messageDir) bodyPart(name string) (*string, error) {
	path := filepath.Join(m.path, name)
	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, storage.WrapError(storage.KindFileRead, path, err)
	}
	body := string(data)
	return &body, nil
}

func (m *messageDir) Raw() ([]byte, error) {
	path := filepath.Join(m.path, rawFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, storage.WrapError(storage.KindFileRead, path, err)
	}
	return data, nil
}

func (m *messageDir) Read() (bool, error) {
	return fileExists(filepath.Join(m.path, readMarkerFile))
}

func (m *messageDir) MarkRead() error {
	path := filepath.Join(m.path, readMarkerFile)
	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	// The timestamp payload is informational only; nothing reads it
	// back.
	readAt := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return writeFile(path, []byte(readAt))
}

func (m *messageDir) Attachments() ([]storage.Attachment, error) {
	path := filepath.Join(m.path, attachmentsDir)
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, storage.WrapError(storage.KindDirRead, path, err)
	}
	var atts []storage.Attachment
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		atts = append(atts, &attachmentFile{path: filepath.Join(path, entry.Name())})
	}
	return atts, nil
}

type attachmentFile struct {
	path string
}

func (a *attachmentFile) Name() string {
	return filepath.Base(a.path)
}

func (a *attachmentFile) Data() ([]byte, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, storage.WrapError(storage.KindFileRead, a.path, err)
	}
	return data, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, storage.WrapError(storage.KindFileExists, path, err)
	}
	return true, nil
}

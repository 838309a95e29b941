/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package storage

import "fmt"

// Kind classifies a storage failure by the operation that produced it.
type Kind int

const (
	KindFileOpen Kind = iota
	KindFileRead
	KindFileWrite
	KindFileExists
	KindFileMetadata
	KindDirRead
	KindDirCreate
	KindSerdeRead
	KindSerdeWrite
)

func (k Kind) String() string {
	switch k {
	case KindFileOpen:
		return "FileOpen"
	case KindFileRead:
		return "FileRead"
	case KindFileWrite:
		return "FileWrite"
	case KindFileExists:
		return "FileExists"
	case KindFileMetadata:
		return "FileMetadata"
	case KindDirRead:
		return "DirRead"
	case KindDirCreate:
		return "DirCreate"
	case KindSerdeRead:
		return "SerdeRead"
	case KindSerdeWrite:
		return "SerdeWrite"
	default:
		return "Unknown"
	}
}

// Error is a storage failure tied to the path that caused it. Nothing
// in this package retries; every failure surfaces to the caller.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError builds an *Error for the given operation kind and path.
func WrapError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

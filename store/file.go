package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edusdk/sessionkit"
	"github.com/edusdk/sessionkit/internal"
)

const (
	pairFileName = "pair.json"
	userFileName = "user.json"
)

// File defines a public type used by sessionkit APIs.
//
// File instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type File struct {
	dir string
}

var (
	_ sessionkit.TokenStore   = (*File)(nil)
	_ sessionkit.ScratchStore = (*File)(nil)
)

// NewFile describes the newfile operation and its observable behavior.
//
// NewFile may return an error when input validation, dependency calls, or security checks fail.
// NewFile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("store: directory required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &File{dir: dir}, nil
}

// Pair describes the pair operation and its observable behavior.
//
// Pair may return an error when input validation, dependency calls, or security checks fail.
// Pair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) Pair(ctx context.Context) (*sessionkit.TokenPair, error) {
	data, err := f.readFile(pairFileName)
	if err != nil || data == nil {
		return nil, err
	}

	var pair sessionkit.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &pair, nil
}

// SetPair describes the setpair operation and its observable behavior.
//
// SetPair may return an error when input validation, dependency calls, or security checks fail.
// SetPair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) SetPair(ctx context.Context, pair sessionkit.TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return f.writeFile(pairFileName, data)
}

// RemovePair describes the removepair operation and its observable behavior.
//
// RemovePair may return an error when input validation, dependency calls, or security checks fail.
// RemovePair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) RemovePair(ctx context.Context) error {
	return f.removeFile(pairFileName)
}

// User describes the user operation and its observable behavior.
//
// User may return an error when input validation, dependency calls, or security checks fail.
// User does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) User(ctx context.Context) (*sessionkit.User, error) {
	data, err := f.readFile(userFileName)
	if err != nil || data == nil {
		return nil, err
	}

	var user sessionkit.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &user, nil
}

// SetUser describes the setuser operation and its observable behavior.
//
// SetUser may return an error when input validation, dependency calls, or security checks fail.
// SetUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) SetUser(ctx context.Context, user sessionkit.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return f.writeFile(userFileName, data)
}

// RemoveUser describes the removeuser operation and its observable behavior.
//
// RemoveUser may return an error when input validation, dependency calls, or security checks fail.
// RemoveUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) RemoveUser(ctx context.Context) error {
	return f.removeFile(userFileName)
}

// Item describes the item operation and its observable behavior.
//
// Item may return an error when input validation, dependency calls, or security checks fail.
// Item does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) Item(ctx context.Context, key string) ([]byte, error) {
	return f.readFile(scratchFileName(key))
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) SetItem(ctx context.Context, key string, data []byte) error {
	return f.writeFile(scratchFileName(key), data)
}

// RemoveItem describes the removeitem operation and its observable behavior.
//
// RemoveItem may return an error when input validation, dependency calls, or security checks fail.
// RemoveItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) RemoveItem(ctx context.Context, key string) error {
	return f.removeFile(scratchFileName(key))
}

// scratchFileName maps a scratch key onto a flat file name. Bytes
// outside the safe set collapse to underscores so a key can never
// escape the store directory.
func scratchFileName(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
	return "scratch_" + mapped
}

// writeFile lands data under a random temp name first and renames into
// place, so a crash mid-write never leaves a torn record behind.
func (f *File) writeFile(name string, data []byte) error {
	suffix, err := internal.NewFileSuffix()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmp := filepath.Join(f.dir, name+".tmp-"+suffix)

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, filepath.Join(f.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (f *File) readFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (f *File) removeFile(name string) error {
	if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

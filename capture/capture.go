// Package capture recovers the usage API bearer token from a browser network capture.
//
// A capture is the performance log of a Chrome session, saved as a JSON array.
// Every entry may hold, in its "message" field, a JSON encoded devtools event.
// Request events carry the request headers, and the first authorization header
// holding a bearer token is the one we want.
package capture

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/charmbracelet/log"
	"github.com/etnz/billsync"
)

const (
	authorizationPath = "$.message.params.headers.authorization"
	bearerPrefix      = "Bearer "
)

// Decode reads a capture: a JSON array of entries.
func Decode(r io.Reader) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", billsync.ErrCaptureParse, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: capture is not an array", billsync.ErrCaptureParse)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the capture", billsync.ErrCaptureParse)
	}
	return entries, nil
}

// Token returns the first bearer token found in entries, in order.
// Entries without a parsable message or without an authorization header are skipped.
func Token(entries []json.RawMessage) (string, bool) {
	for i, entry := range entries {
		auth, err := authorization(entry)
		if err != nil {
			log.Debug("skipping capture entry", "entry", i, "err", err)
			continue
		}
		if strings.HasPrefix(auth, bearerPrefix) {
			return auth, true
		}
	}
	return "", false
}

// authorization returns the authorization header of a capture entry.
func authorization(entry json.RawMessage) (string, error) {
	var e struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(entry, &e); err != nil {
		return "", fmt.Errorf("cannot decode entry: %w", err)
	}
	if e.Message == nil {
		return "", fmt.Errorf("entry has no message")
	}

	var event any
	if err := json.Unmarshal([]byte(*e.Message), &event); err != nil {
		return "", fmt.Errorf("cannot decode message: %w", err)
	}
	v, err := jsonpath.Get(authorizationPath, event)
	if err != nil {
		return "", err
	}
	auth, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("authorization header is a %T", v)
	}
	return auth, nil
}

// ReadToken reads the capture file at path and returns its first bearer token.
//
// A missing file returns an error matching fs.ErrNotExist, a file that is not a
// capture returns billsync.ErrCaptureParse, and a capture without any bearer
// token returns billsync.ErrTokenNotFound.
func ReadToken(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open capture: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return "", fmt.Errorf("cannot read capture %q: %w", path, err)
	}
	token, ok := Token(entries)
	if !ok {
		return "", fmt.Errorf("%w in %q (%d entries)", billsync.ErrTokenNotFound, path, len(entries))
	}
	log.Debug("bearer token found", "capture", path, "entries", len(entries))
	return token, nil
}

// Package spool reads recorded notifications from files and watches a spool
// directory for new ones.
package spool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/paycapture/internal/model"
)

// ErrMalformed is returned when spool data is not a notification object,
// a JSON array of them or a stream of them.
var ErrMalformed = errors.New("malformed spool data")

// Decode parses spool data: a single notification object, a JSON array of
// notifications or newline-delimited notification objects.
func Decode(data []byte) ([]model.RawNotification, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var batch []model.RawNotification
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return batch, nil
	}

	var batch []model.RawNotification
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var n model.RawNotification
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			return batch, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: notification %d: %w", ErrMalformed, len(batch)+1, err)
		}
		batch = append(batch, n)
	}
}

// ReadFile decodes the notifications stored in path.
func ReadFile(path string) ([]model.RawNotification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	batch, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return batch, nil
}

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Veraticus/paycapture/internal/model"
)

var (
	// ErrInputCancelled is returned when input is canceled by context.
	ErrInputCancelled = errors.New("input canceled")
	// ErrMalformedNotification is returned for lines that are not a notification object.
	ErrMalformedNotification = errors.New("malformed notification")
)

// NonBlockingReader provides context-aware input reading that can be interrupted.
type NonBlockingReader struct {
	reader      *bufio.Reader
	readingLock sync.Mutex
}

// NewNonBlockingReader creates a new non-blocking reader.
func NewNonBlockingReader(reader io.Reader) *NonBlockingReader {
	if reader == nil {
		panic("reader cannot be nil")
	}

	return &NonBlockingReader{
		reader: bufio.NewReader(reader),
	}
}

// ReadString reads a string until delim, respecting context cancellation.
// A read abandoned on cancellation keeps running until the underlying reader returns.
func (r *NonBlockingReader) ReadString(ctx context.Context, delim byte) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString(delim)
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}

// ReadLine reads a line, respecting context cancellation. A final line
// without a trailing newline is returned before io.EOF.
func (r *NonBlockingReader) ReadLine(ctx context.Context) (string, error) {
	line, err := r.ReadString(ctx, '\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadNotification reads the next non-blank JSON line as a notification.
func (r *NonBlockingReader) ReadNotification(ctx context.Context) (model.RawNotification, error) {
	for {
		line, err := r.ReadLine(ctx)
		if err != nil {
			return model.RawNotification{}, err
		}
		if line == "" {
			continue
		}
		return DecodeNotification([]byte(line))
	}
}

// DecodeNotification parses one notification object.
func DecodeNotification(data []byte) (model.RawNotification, error) {
	var n model.RawNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return model.RawNotification{}, fmt.Errorf("%w: %w", ErrMalformedNotification, err)
	}
	return n, nil
}

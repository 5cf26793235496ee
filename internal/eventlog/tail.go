package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// tailPollInterval is the fallback cadence when filesystem notifications are
// unavailable or silently dropped (network filesystems, editors that replace
// files). The tail always re-checks on this tick regardless of notifications.
const tailPollInterval = 500 * time.Millisecond

// Tail follows the log from its current end and sends each newly appended,
// successfully parsed event on the returned channel until ctx is cancelled.
// The channel is closed when the tail stops. A log file that does not exist
// yet is not an error; events start flowing once a producer creates it.
//
// The tail wakes on fsnotify write events for the session directory and
// additionally polls as a fallback. Partial trailing lines (a writer caught
// mid-append) are left unconsumed until the newline arrives.
func (l *Log) Tail(ctx context.Context) (<-chan *Event, error) {
	if err := l.sess.EnsureDir(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Watch the directory, not the file: the log may not exist yet, and a
	// Clear recreates it.
	if err := watcher.Add(l.sess.Dir()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch session directory: %w", err)
	}

	// Start from the current end of the log.
	offset := int64(0)
	if fi, err := os.Stat(l.Path()); err == nil {
		offset = fi.Size()
	}

	out := make(chan *Event, 16)
	go func() {
		defer close(out)
		defer watcher.Close()

		ticker := time.NewTicker(tailPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-watcher.Events:
			case <-ticker.C:
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "eventlog: tail watcher: %v\n", err)
				continue
			}

			var err error
			offset, err = l.drainFrom(ctx, offset, out)
			if err != nil {
				fmt.Fprintf(os.Stderr, "eventlog: tail read: %v\n", err)
			}
		}
	}()
	return out, nil
}

// drainFrom reads complete lines starting at offset, emits parsed events, and
// returns the new offset (always positioned at a line boundary). A truncated
// log (Clear) resets the offset to zero so the tail picks up the fresh file.
func (l *Log) drainFrom(ctx context.Context, offset int64, out chan<- *Event) (int64, error) {
	f, err := os.Open(l.Path())
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return offset, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return offset, err
	}
	if fi.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// Incomplete trailing line: do not advance past it.
			return offset, nil
		}
		offset += int64(len(line))

		var ev Event
		if json.Unmarshal(line, &ev) != nil || ev.Type == "" {
			continue
		}
		select {
		case out <- &ev:
		case <-ctx.Done():
			return offset, nil
		}
	}
}

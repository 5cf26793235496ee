// Package sampler runs an external command on a fixed timer, parses its
// stdout, and republishes the result as an atomically-replaced snapshot
// document that any process can poll.
//
// The command string is executed through a shell and may contain pipes and
// redirects. This is a deliberate trust boundary: the string originates from
// the operator's own CLI invocation or dashboard config, never from
// untrusted network input, and is not sanitized — sanitizing would break
// legitimate pipeline commands.
package sampler

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/blackwell-systems/muxdash/internal/atomicfile"
)

// DefaultInterval is used when a config omits the tick interval.
const DefaultInterval = 5 * time.Second

// Hints reshape a parsed scalar into the document shape a dashboard widget
// consumes. With Series set, a `{value: n}` scalar becomes a single-series
// data point; non-scalar documents pass through unchanged.
type Hints struct {
	Series string `yaml:"series" json:"series"`
}

// Config describes one sampler.
type Config struct {
	Name       string
	Command    string
	Interval   time.Duration
	Parse      Mode
	OutputPath string
	Hints      *Hints

	// OnError is called after a tick whose command failed, for
	// observability only. The sampler keeps its schedule regardless.
	OnError func(error)
}

// Sampler executes one Config on a ticker until stopped.
type Sampler struct {
	cfg    Config
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// New validates cfg and returns a Sampler. Interval defaults to
// DefaultInterval, parse mode to auto.
func New(cfg Config) (*Sampler, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("sampler %q: command cannot be empty", cfg.Name)
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("sampler %q: output path cannot be empty", cfg.Name)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Parse == "" {
		cfg.Parse = ModeAuto
	}
	if !ValidMode(cfg.Parse) {
		return nil, fmt.Errorf("sampler %q: unknown parse mode %q", cfg.Name, cfg.Parse)
	}
	return &Sampler{cfg: cfg, stopCh: make(chan struct{})}, nil
}

// Start runs the first tick immediately, then schedules ticks on the
// configured interval in a background goroutine.
func (s *Sampler) Start() {
	s.Tick()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop halts future ticks and waits for an in-flight tick to settle. The
// in-flight tick is not interrupted, so at most one further snapshot publish
// may occur after Stop is requested.
func (s *Sampler) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Tick executes the command once and publishes a snapshot. A failed command
// publishes an error snapshot instead of raising; a failed publish is
// printed to stderr and dropped. The next tick is the retry.
func (s *Sampler) Tick() {
	doc := s.sample()
	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sampler %s: marshal snapshot: %v\n", s.cfg.Name, err)
		return
	}
	if err := atomicfile.Publish(s.cfg.OutputPath, data); err != nil {
		fmt.Fprintf(os.Stderr, "sampler %s: publish snapshot: %v\n", s.cfg.Name, err)
	}
}

// sample runs the command and converts its output to the snapshot document.
func (s *Sampler) sample() any {
	out, err := exec.Command("sh", "-c", s.cfg.Command).Output()
	if err != nil {
		if s.cfg.OnError != nil {
			s.cfg.OnError(err)
		}
		return map[string]any{"error": commandErrorMessage(err), "value": float64(0)}
	}
	return s.reshape(Parse(s.cfg.Parse, string(out)))
}

// reshape applies the adapter hints. Only scalar documents ({value: x}) are
// reshaped; everything else already has a consumer-defined shape.
func (s *Sampler) reshape(doc any) any {
	if s.cfg.Hints == nil || s.cfg.Hints.Series == "" {
		return doc
	}
	m, ok := doc.(map[string]any)
	if !ok || len(m) != 1 {
		return doc
	}
	v, ok := m["value"]
	if !ok {
		return doc
	}
	return map[string]any{
		"series": []any{
			map[string]any{
				"label": s.cfg.Hints.Series,
				"points": []any{
					map[string]any{"ts": time.Now().UnixMilli(), "value": v},
				},
			},
		},
	}
}

// commandErrorMessage folds stderr into the error message when the command
// exited non-zero, since exec.ExitError alone only carries the exit status.
func commandErrorMessage(err error) string {
	if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
		return fmt.Sprintf("%v: %s", err, string(ee.Stderr))
	}
	return err.Error()
}

// Command muxdash-probe reports an interaction outcome from inside a spawned
// pane. The controller exports the interaction contract into the pane's
// environment (MUXDASH_INTERACTION_ID, MUXDASH_RESULT_FILE,
// MUXDASH_PROGRESS_FILE); the probe reads it and writes the result document
// the controller is awaiting.
//
// Usage:
//
//	muxdash-probe [accept|decline|cancel]           # terminal result
//	muxdash-probe -answers '{"name":"web"}' accept  # with form answers
//	muxdash-probe -progress '{"step":2}'            # progress only, not terminal
//
// The result file is replaced atomically (temp file + rename in the same
// directory), so a concurrently polling controller never reads a partial
// document.
//
// The probe must NOT import any internal muxdash packages — it is a
// standalone binary deployed into panes separately from the main CLI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const (
	envInteractionID = "MUXDASH_INTERACTION_ID"
	envResultFile    = "MUXDASH_RESULT_FILE"
	envProgressFile  = "MUXDASH_PROGRESS_FILE"
)

func main() {
	answersJSON := flag.String("answers", "", "form answers as a JSON object")
	resultJSON := flag.String("result", "", "arbitrary result payload as JSON")
	progressJSON := flag.String("progress", "", "write a progress document instead of a terminal result")
	flag.Parse()

	id := os.Getenv(envInteractionID)
	if id == "" {
		fmt.Fprintf(os.Stderr, "muxdash-probe: %s is not set; run inside a spawned pane\n", envInteractionID)
		os.Exit(1)
	}

	if *progressJSON != "" {
		path := os.Getenv(envProgressFile)
		if path == "" {
			fmt.Fprintf(os.Stderr, "muxdash-probe: %s is not set\n", envProgressFile)
			os.Exit(1)
		}
		if err := publishJSON(path, json.RawMessage(*progressJSON)); err != nil {
			fmt.Fprintf(os.Stderr, "muxdash-probe: %v\n", err)
			os.Exit(1)
		}
		return
	}

	action := "accept"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}
	switch action {
	case "accept", "decline", "cancel":
	default:
		fmt.Fprintf(os.Stderr, "muxdash-probe: invalid action %q (want accept, decline, or cancel)\n", action)
		os.Exit(1)
	}

	doc := map[string]any{"action": action}
	if *answersJSON != "" {
		var answers map[string]any
		if err := json.Unmarshal([]byte(*answersJSON), &answers); err != nil {
			fmt.Fprintf(os.Stderr, "muxdash-probe: -answers is not valid JSON: %v\n", err)
			os.Exit(1)
		}
		doc["answers"] = answers
	}
	if *resultJSON != "" {
		var payload any
		if err := json.Unmarshal([]byte(*resultJSON), &payload); err != nil {
			fmt.Fprintf(os.Stderr, "muxdash-probe: -result is not valid JSON: %v\n", err)
			os.Exit(1)
		}
		doc["result"] = payload
	}

	path := os.Getenv(envResultFile)
	if path == "" {
		fmt.Fprintf(os.Stderr, "muxdash-probe: %s is not set\n", envResultFile)
		os.Exit(1)
	}
	if err := publishJSON(path, doc); err != nil {
		fmt.Fprintf(os.Stderr, "muxdash-probe: %v\n", err)
		os.Exit(1)
	}
}

// publishJSON writes the document to a temp file in the target directory and
// renames it over the destination. Rename within a directory is atomic on
// POSIX filesystems.
func publishJSON(path string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

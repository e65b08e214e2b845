// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// =============================================================================
// InputReader
// =============================================================================

// InputReader abstracts user input reading for testability.
//
// # Description
//
// Enables mocking of stdin in unit tests. Production implementation wraps
// bufio.Reader; test implementation returns predetermined inputs.
//
// # Outputs
//
// ReadLine returns the trimmed line and io.EOF when input is exhausted.
type InputReader interface {
	ReadLine() (string, error)
}

// StdinReader implements InputReader over os.Stdin.
//
// # Limitations
//
//   - Blocks until newline received or EOF
//   - No line editing support (no up-arrow history, no tab completion)
type StdinReader struct {
	reader *bufio.Reader
}

func NewStdinReader() *StdinReader {
	return &StdinReader{reader: bufio.NewReader(os.Stdin)}
}

func (r *StdinReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// MockInputReader returns scripted lines, then io.EOF.
type MockInputReader struct {
	Lines []string
	pos   int
}

func (m *MockInputReader) ReadLine() (string, error) {
	if m.pos >= len(m.Lines) {
		return "", io.EOF
	}
	line := m.Lines[m.pos]
	m.pos++
	return line, nil
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runChatCommand starts the interactive chat loop against the core.
//
// # Description
//
// Mints a conversation session first (locally generated when the core
// cannot), then reads lines until EOF, /quit, or SIGINT. A failed
// exchange prints the assistant's apology and the loop continues; the
// session and its history on the core survive individual failures.
func runChatCommand(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "chat requires an interactive terminal")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := runChatLoop(ctx, app.Dash, NewStdinReader(), os.Stdout); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Chat error: %v\n", err)
		os.Exit(1)
	}
}

// runChatLoop is the transport-to-terminal loop, split out for tests.
func runChatLoop(ctx context.Context, dash *DashboardClient, input InputReader, out io.Writer) error {
	sessionID := dash.CreateChatSession(ctx)
	fmt.Fprintf(out, "Connected to the core. Session %s\n", sessionID)
	fmt.Fprintln(out, "Type /quit to leave.")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, "\n> ")

		line, err := input.ReadLine()
		if err == io.EOF {
			fmt.Fprintln(out, "\nBye.")
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		reply := dash.SendChat(ctx, line, sessionID)
		fmt.Fprintf(out, "\n%s\n", reply.Message)
		if reply.Metadata.Expert != "" {
			fmt.Fprintf(out, "  [agent %s", reply.Metadata.Expert)
			if reply.Metadata.Confidence > 0 {
				fmt.Fprintf(out, ", confidence %.0f%%", reply.Metadata.Confidence*100)
			}
			fmt.Fprintln(out, "]")
		}
	}
}

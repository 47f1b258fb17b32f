package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"jinaai/internal/logging"
)

var errNoInput = errors.New("No input data from stdin.")

type successEnvelope struct {
	Status string `json:"status"`
	Result string `json:"result"`
}

type errorEnvelope struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func runPlugin(cmd *cobra.Command, opts *options) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	fail := func(err error) error {
		writeFailure(out, errOut, err)
		return errReported
	}

	data, err := readInput(cmd.InOrStdin(), opts.inputPath)
	if err != nil {
		return fail(err)
	}
	raw, err := decodeInput(data)
	if err != nil {
		return fail(err)
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	eng, _ := buildEngine(opts.cfg)
	result, err := eng.Run(ctx, raw)
	if err != nil {
		return fail(err)
	}

	if opts.pretty {
		return writePretty(out, result)
	}
	return writeJSON(out, successEnvelope{Status: "success", Result: result})
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errNoInput
	}
	logging.BootDebug("Received input: %d bytes", len(data))
	return data, nil
}

// decodeInput parses one JSON object, keeping numbers as json.Number so the
// normalizer decides their type.
func decodeInput(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("Invalid JSON input: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("Invalid JSON input: expected an object")
	}
	return raw, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeFailure writes the error envelope to out and echoes the message to
// errOut.
func writeFailure(out, errOut io.Writer, err error) {
	msg := err.Error()
	fmt.Fprintf(errOut, "[JinaAI Error] %s\n", msg)
	_ = writeJSON(out, errorEnvelope{Status: "error", Error: msg})
}

func writePretty(w io.Writer, markdown string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, strings.TrimLeft(rendered, "\n"))
	return err
}

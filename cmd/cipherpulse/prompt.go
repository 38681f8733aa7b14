package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/ghalamif/CipherPulse"
)

// promptChoice asks for an export format on out and reads one line from in.
// End of input counts as an unrecognized answer.
func promptChoice(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, cipherpulse.ExportPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read choice: %w", err)
	}
	return cipherpulse.ResolveChoice(line)
}

// exportFormats returns the configured formats, or asks once when none are
// configured. An empty result means nothing is exported; the reason has
// already been printed.
func exportFormats(configured []string, in io.Reader, out, errOut io.Writer) []string {
	if len(configured) > 0 {
		return configured
	}
	format, err := promptChoice(in, out)
	if errors.Is(err, cipherpulse.ErrUnrecognizedChoice) {
		fmt.Fprintln(out, "Invalid choice.")
		return nil
	}
	if err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return nil
	}
	return []string{format}
}

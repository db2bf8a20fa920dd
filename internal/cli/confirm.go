package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/rook/internal/ui"
)

// interactive reports whether rook can prompt: both ends of the
// conversation must be terminals and output must be human-readable.
func interactive() bool {
	if jsonOutput {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

// promptConfirm asks a yes/no question, defaulting to no. Outside an
// interactive session it answers no, so destructive commands need --force
// in scripts.
func promptConfirm(message string) bool {
	if !interactive() {
		return false
	}
	fmt.Fprintf(stdout, "%s %s ", message, ui.Hint("[y/N]"))
	response := readLine()
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}

// promptLine asks for one line of input, returning fallback on empty.
func promptLine(message, fallback string) string {
	if fallback != "" {
		fmt.Fprintf(stdout, "%s %s ", message, ui.Hint("["+fallback+"]"))
	} else {
		fmt.Fprintf(stdout, "%s ", message)
	}
	line := readLine()
	if line == "" {
		return fallback
	}
	return line
}

func readLine() string {
	reader := bufio.NewReader(stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

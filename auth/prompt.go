package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks a human for the authorization code shown after visiting
// authURL. It blocks until a code is available.
type Prompter interface {
	PromptCode(authURL string) (string, error)
}

type PrompterFunc func(authURL string) (string, error)

func (f PrompterFunc) PromptCode(authURL string) (string, error) {
	return f(authURL)
}

type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *TerminalPrompter) PromptCode(authURL string) (string, error) {
	fmt.Fprintf(p.out, "Authorize this app by visiting this url:\n%s\n", authURL)
	fmt.Fprint(p.out, "Enter the code from that page here: ")

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("unable to read authorization code: %w", err)
	}

	code := strings.TrimSpace(line)
	if code == "" {
		return "", errors.New("unable to read authorization code: empty input")
	}
	return code, nil
}

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrNoCredentials = errors.New("username and password are required")

// Prompter asks the person running the tool for values that were not
// configured.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptSecret(label string) (string, error)
}

// ResolveCredentials prompts for whichever of username and password is still
// missing. A nil prompter turns missing credentials into ErrNoCredentials.
func (c *Config) ResolveCredentials(p Prompter) error {
	var err error
	if c.Username == "" && p != nil {
		c.Username, err = p.Prompt("Username: ")
		if err != nil {
			return err
		}
	}
	if c.Password == "" && p != nil {
		c.Password, err = p.PromptSecret("Password: ")
		if err != nil {
			return err
		}
	}
	if c.Username == "" || c.Password == "" {
		return ErrNoCredentials
	}
	return nil
}

// TerminalPrompter reads from stdin and writes prompts to stderr, secrets are
// read without echo when stdin is a terminal.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (p *TerminalPrompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.Out, label)
	return p.readLine()
}

func (p *TerminalPrompter) PromptSecret(label string) (string, error) {
	fmt.Fprint(p.Out, label)
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return p.readLine()
	}
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

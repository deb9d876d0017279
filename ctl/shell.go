// Package ctl implements the line-oriented command shell over a register.
package ctl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nyiyui.ca/hato/senro/register"
)

type ShellConf struct {
	// Prompt is written before every command read.
	Prompt string
	// Echo writes every command read back to the output.
	Echo bool
}

type Shell struct {
	reg  *register.Register
	conf ShellConf
	out  io.Writer
	log  *zap.SugaredLogger
	done bool
}

func NewShell(reg *register.Register, out io.Writer, conf ShellConf) *Shell {
	id := uuid.New()
	return &Shell{
		reg:  reg,
		conf: conf,
		out:  out,
		log:  zap.S().With("session", id.String()),
	}
}

func (s *Shell) println(v any) {
	fmt.Fprintln(s.out, v)
}

func (s *Shell) printList(lines []string, empty string) error {
	if len(lines) == 0 {
		s.println(empty)
		return nil
	}
	for _, l := range lines {
		s.println(l)
	}
	return nil
}

// Done reports whether the exit command was run.
func (s *Shell) Done() bool { return s.done }

// Run executes the commands read from in until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.log.Info("session started")
	defer s.log.Info("session ended")
	sc := bufio.NewScanner(in)
	for !s.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.conf.Prompt != "" {
			fmt.Fprint(s.out, s.conf.Prompt)
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSuffix(sc.Text(), "\r")
		if s.conf.Echo {
			s.println(line)
		}
		s.Exec(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

func lookup(line string) (command, bool) {
	for _, c := range commands {
		if line == c.name || strings.HasPrefix(line, c.name+" ") {
			return c, true
		}
	}
	return command{}, false
}

// Exec runs one command line, writing its output (or "Error, <message>").
func (s *Shell) Exec(line string) {
	c, ok := lookup(line)
	if !ok {
		s.printError("unknown command")
		return
	}
	args := strings.Split(line, " ")[len(strings.Split(c.name, " ")):]
	if len(args) != c.nArgs || strings.HasSuffix(line, " ") {
		s.printError(fmt.Sprintf("invalid number of arguments. Expected %d arguments of the form '%s'", c.nArgs, c.usage))
		return
	}
	if err := c.run(s, args); err != nil {
		s.log.Debugw("command failed", "command", c.name, "err", err)
		s.printError(err.Error())
		return
	}
	s.log.Debugw("command", "command", c.name)
}

func (s *Shell) printError(msg string) {
	s.println("Error, " + msg)
}

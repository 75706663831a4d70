package shell

import (
	"fmt"
	"strconv"

	"github.com/pborman/getopt/v2"
)

// builtinHistory displays or manipulates the history list.
func (s *Shell) builtinHistory(ec execContext) int {
	opts := getopt.New()
	opts.SetProgram(ec.args[0])
	opts.SetParameters("[N]")
	clear := opts.Bool('c', "clear the history list by deleting all entries")
	readFile := opts.String('r', "", "read FILE and append its contents to the history list", "FILE")
	writeFile := opts.String('w', "", "write the history list to FILE", "FILE")
	appendFile := opts.String('a', "", "append new history entries to FILE", "FILE")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(ec.args, nil); err != nil || *helpOpt {
		if err != nil {
			fmt.Fprintf(ec.stderr, "%s: %v\n", ec.args[0], err)
		}
		fmt.Fprintln(ec.stderr, "Display or manipulate the history list.")
		opts.PrintUsage(ec.stderr)
		if err != nil {
			return 2
		}
		return 0
	}

	optionChosen := false
	if *clear {
		s.history.Clear()
		optionChosen = true
	}
	if *readFile != "" {
		read, err := s.history.ReadFile(s.fs, *readFile)
		if err != nil {
			fmt.Fprintf(ec.stderr, "%s: %s: %v\n", ec.args[0], *readFile, describePathError(err))
			return 1
		}
		for _, line := range read {
			s.saveLine(line)
		}
		optionChosen = true
	}
	if *writeFile != "" {
		if err := s.history.WriteFile(s.fs, *writeFile); err != nil {
			fmt.Fprintf(ec.stderr, "%s: %s: %v\n", ec.args[0], *writeFile, describePathError(err))
			return 1
		}
		optionChosen = true
	}
	if *appendFile != "" {
		if err := s.history.AppendFile(s.fs, *appendFile); err != nil {
			fmt.Fprintf(ec.stderr, "%s: %s: %v\n", ec.args[0], *appendFile, describePathError(err))
			return 1
		}
		optionChosen = true
	}
	if optionChosen {
		return 0
	}

	entries := s.history.Entries()
	start := 0
	switch args := opts.Args(); len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			fmt.Fprintf(ec.stderr, "%s: %s: numeric argument required\n", ec.args[0], args[0])
			return 1
		}
		start = max(0, len(entries)-n)
	default:
		fmt.Fprintf(ec.stderr, "%s: too many arguments\n", ec.args[0])
		return 1
	}

	for i := start; i < len(entries); i++ {
		fmt.Fprintf(ec.stdout, "% 5d  %s\n", i+1, entries[i])
	}
	return 0
}

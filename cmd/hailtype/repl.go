package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/hail-is/hailtype"
	"github.com/hail-is/hailtype/reference"
	"github.com/hail-is/hailtype/typechecker"
	"github.com/hail-is/hailtype/types"
)

const replHelp = `Enter a type in display form to print its forms and context.

  :unify PATTERN ~ TYPE   unify in the session and print the substituted pattern
  :reset                  release all bindings of the session
  :quit                   exit
`

func cmdRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	refs := refsFlag(fs)
	fs.Parse(args)
	reg := registry(*refs)
	if fsreg, ok := reg.(*reference.FSRegistry); ok {
		stop, err := fsreg.Watch(*refs)
		if err != nil {
			return err
		}
		defer stop()
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Print(replHelp)
	session := typechecker.NewUnifier()
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		switch {
		case line == ":quit":
			return nil
		case line == ":reset":
			session.Reset()
		case strings.HasPrefix(line, ":unify "):
			if err := replUnify(session, strings.TrimPrefix(line, ":unify ")); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case strings.HasPrefix(line, ":"):
			fmt.Print(replHelp)
		default:
			t, err := hailtype.Dtype(line)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Println(types.Pretty(t, 0, 2))
			fmt.Println(t.Parsable())
			if refs := t.Context().References(); len(refs) > 0 {
				d, err := hailtype.Export(t, reg)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				fmt.Printf("references %s (%d resolved)\n", strings.Join(refs, ", "), len(d.Context.ReferenceGenomes))
			}
		}
	}
}

func replUnify(session *typechecker.Unifier, line string) error {
	left, right, ok := strings.Cut(line, "~")
	if !ok {
		return errors.New("usage: :unify PATTERN ~ TYPE")
	}
	pattern, err := hailtype.Dtype(strings.TrimSpace(left))
	if err != nil {
		return err
	}
	candidate, err := hailtype.Dtype(strings.TrimSpace(right))
	if err != nil {
		return err
	}
	if !session.Unify(pattern, candidate) {
		fmt.Printf("%s does not unify with %s\n", pattern, candidate)
		return nil
	}
	if session.Resolved(pattern) {
		fmt.Println(session.Subst(pattern))
	} else {
		fmt.Println("unified; pattern still has unbound variables")
	}
	return nil
}

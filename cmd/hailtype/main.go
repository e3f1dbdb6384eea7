// Command hailtype inspects type descriptors and validates JSON records
// against them.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/hail-is/hailtype"
	"github.com/hail-is/hailtype/codec"
	"github.com/hail-is/hailtype/internal/htmldoc"
	"github.com/hail-is/hailtype/reference"
	"github.com/hail-is/hailtype/typechecker"
	"github.com/hail-is/hailtype/types"
)

const (
	historyFile = ".hailtype_history"
	prompt      = "type> "
	// maxLine bounds a single NDJSON record.
	maxLine = 16 << 20
)

const usageText = `usage: hailtype <command> [flags] [arguments]

commands:
  parse   [-parsable] [-pretty] TYPE       print a type in display, parsable or pretty form
  check   [-workers n] TYPE [FILE]         validate newline-delimited JSON values against TYPE
  encode  TYPE [FILE]                      decode JSON values under TYPE and print them re-encoded
  context [-refs dir] TYPE                 print the exchange descriptor of TYPE
  html    TYPE                             print TYPE as an HTML outline
  repl    [-refs dir]                      read types interactively

Reference genome configurations are read from <dir>/<name>.json, where dir
is the -refs flag or $HAILTYPE_REFERENCES.
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("hailtype: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "parse":
		err = cmdParse(args)
	case "check":
		err = cmdCheck(args)
	case "encode":
		err = cmdEncode(args)
	case "context":
		err = cmdContext(args)
	case "html":
		err = cmdHTML(args)
	case "repl":
		err = cmdRepl(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		log.Printf("unknown command %q", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// typeArg parses the type argument of a subcommand.
func typeArg(fs *flag.FlagSet) (types.Type, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("%s: missing TYPE argument", fs.Name())
	}
	return hailtype.Dtype(fs.Arg(0))
}

func refsFlag(fs *flag.FlagSet) *string {
	return fs.String("refs", os.Getenv("HAILTYPE_REFERENCES"), "directory of reference genome configurations")
}

func registry(dir string) reference.Registry {
	if dir == "" {
		return reference.NewMemRegistry()
	}
	return reference.NewFSRegistry(os.DirFS(dir))
}

// input opens the optional FILE argument at index i, defaulting to stdin.
func input(fs *flag.FlagSet, i int) (io.ReadCloser, error) {
	if fs.NArg() <= i || fs.Arg(i) == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(fs.Arg(i))
}

func cmdParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	parsable := fs.Bool("parsable", false, "print the parsable form")
	pretty := fs.Bool("pretty", false, "print the pretty form")
	indent := fs.Int("indent", 2, "indentation step of the pretty form")
	fs.Parse(args)

	t, err := typeArg(fs)
	if err != nil {
		return err
	}
	switch {
	case *parsable:
		fmt.Println(t.Parsable())
	case *pretty:
		fmt.Println(types.Pretty(t, 0, *indent))
	default:
		fmt.Println(t)
	}
	return nil
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	workers := fs.Int("workers", 8, "number of records checked concurrently")
	fs.Parse(args)

	t, err := typeArg(fs)
	if err != nil {
		return err
	}
	r, err := input(fs, 1)
	if err != nil {
		return err
	}
	defer r.Close()

	var lines [][]byte
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		lines = append(lines, bytes.Clone(sc.Bytes()))
	}
	if err := sc.Err(); err != nil {
		return err
	}

	results := make([]error, len(lines))
	var g errgroup.Group
	g.SetLimit(max(*workers, 1))
	for i, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		g.Go(func() error {
			v, err := codec.Unmarshal(t, line)
			if err == nil {
				err = typechecker.Typecheck(t, v)
			}
			results[i] = err
			return nil
		})
	}
	g.Wait()

	failed := 0
	for i, err := range results {
		if err != nil {
			failed++
			fmt.Printf("line %d: %v\n", i+1, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records do not conform to %s", failed, len(lines), t)
	}
	return nil
}

func cmdEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.Parse(args)

	t, err := typeArg(fs)
	if err != nil {
		return err
	}
	r, err := input(fs, 1)
	if err != nil {
		return err
	}
	defer r.Close()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	for {
		var raw any
		if err := dec.Decode(&raw); errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		v, err := codec.Decode(t, raw)
		if err != nil {
			return err
		}
		out, err := codec.Marshal(t, v)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
}

func cmdContext(args []string) error {
	fs := flag.NewFlagSet("context", flag.ExitOnError)
	refs := refsFlag(fs)
	fs.Parse(args)

	t, err := typeArg(fs)
	if err != nil {
		return err
	}
	d, err := hailtype.Export(t, registry(*refs))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func cmdHTML(args []string) error {
	fs := flag.NewFlagSet("html", flag.ExitOnError)
	fs.Parse(args)

	t, err := typeArg(fs)
	if err != nil {
		return err
	}
	if err := htmldoc.Render(os.Stdout, t); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

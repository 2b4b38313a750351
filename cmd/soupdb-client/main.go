// Command soupdb-client is a minimal line-reading REPL against a local
// database: no line editor, just a bufio.Scanner loop. Statements
// accumulate until a ';', then get executed and their result printed.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/soupdb/soupdb"
	"github.com/soupdb/soupdb/internal/exporter"
)

var (
	flagConfig = flag.String("config", "soupdb.yaml", "path to a YAML config file")
	flagDB     = flag.String("db", "default", "database name to open")
	flagFormat = flag.String("format", "", "row display format: csv, json, xml, gob (default: Go map literal)")
)

func main() {
	flag.Parse()

	cfg, err := soupdb.LoadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	db, err := soupdb.Open(cfg, *flagDB)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}

	runREPL(db, os.Stdin, os.Stdout, exporter.Format(*flagFormat))
}

func runREPL(db *soupdb.Database, in *os.File, out *os.File, format exporter.Format) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 1024), 4*1024*1024)

	interactive := false
	if fi, err := in.Stat(); err == nil {
		interactive = (fi.Mode() & os.ModeCharDevice) != 0
	}

	var buf strings.Builder
	if interactive {
		fmt.Fprintln(out, "soupdb-client. End a command with ';'.")
	}
	if interactive {
		fmt.Fprint(out, "soupdb> ")
	}

	for sc.Scan() {
		line := sc.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')

		if !strings.Contains(line, ";") {
			continue
		}

		command := strings.TrimSpace(buf.String())
		buf.Reset()
		if command == "" {
			if interactive {
				fmt.Fprint(out, "soupdb> ")
			}
			continue
		}

		result, err := db.Exec(command)
		switch {
		case err != nil:
			fmt.Fprintln(out, "ERR:", err)
		case len(result.Rows) == 0:
			fmt.Fprintln(out, "OK")
		case format != "":
			if err := exporter.Export(out, format, result, exporter.Options{}); err != nil {
				fmt.Fprintln(out, "ERR:", err)
			}
		default:
			for _, row := range result.Rows {
				fmt.Fprintln(out, row)
			}
		}

		if interactive {
			fmt.Fprint(out, "soupdb> ")
		}
	}
}

// Command egs-info prints a summary of training example archives: the
// streams each example carries, their supervision encodings and shapes, and
// per-stream totals across the whole archive.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/workflow-demo-org/nnetcore/egs"
)

func main() {
	formatName := flag.String("format", "auto", "Archive format: auto, json or binary.")
	perExample := flag.Bool("per-example", false, "Print one line per stream of every example.")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: egs-info [-format auto|json|binary] [-per-example] archive...")
		os.Exit(2)
	}

	for _, path := range flag.Args() {
		if err := inspect(path, *formatName, *perExample); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
}

type streamTotals struct {
	count  int
	rows   int
	weight float64
}

func pickFormat(path, formatName string) (egs.Format, error) {
	switch formatName {
	case "auto":
		return egs.DetectFormat(path), nil
	case "json":
		return egs.FormatJSON, nil
	case "binary":
		return egs.FormatBinary, nil
	default:
		return 0, fmt.Errorf("unknown format %q", formatName)
	}
}

func inspect(path, formatName string, perExample bool) error {
	format, err := pickFormat(path, formatName)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	totals := make(map[string]*streamTotals)
	reader := egs.NewReader(r, format)
	numExamples := 0
	for {
		eg, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("example %d: %w", numExamples, err)
		}
		for _, io := range eg.IO {
			rows, cols := io.Features.Dims()
			if perExample {
				fmt.Printf("%s: example %d stream %q: %s %dx%d\n",
					path, numExamples, io.Name, io.Features.Encoding(), rows, cols)
			}
			st, ok := totals[io.Name]
			if !ok {
				st = &streamTotals{}
				totals[io.Name] = st
			}
			st.count++
			st.rows += rows
			st.weight += io.Features.Sum()
		}
		numExamples++
	}

	fmt.Printf("%s: %d examples\n", path, numExamples)
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := totals[name]
		fmt.Printf("%s: stream %q: %d occurrences, %d rows, total weight %g\n",
			path, name, st.count, st.rows, st.weight)
	}
	return nil
}

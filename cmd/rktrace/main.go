// Command rktrace reads a CSV event trail written by klog.EventTrail
// and prints a human-readable summary, the same
// "parse the CSV, report on it" shape as log2gpx.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	path := pflag.StringP("file", "f", "", "Path to the CSV event trail to summarize.")
	kindFilter := pflag.StringP("kind", "k", "", "Only show events of this kind.")
	help := pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rktrace -f <trail.csv> [options]\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help || *path == "" {
		pflag.Usage()
		return
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rktrace: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	counts := map[string]int{}
	n := 0

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "rktrace: parse error: %v\n", err)
			os.Exit(1)
		}

		if len(rec) < 2 {
			continue
		}

		ts, kind := rec[0], rec[1]

		if *kindFilter != "" && kind != *kindFilter {
			continue
		}

		fmt.Printf("%s  %-16s %v\n", ts, kind, rec[2:])
		counts[kind]++
		n++
	}

	fmt.Printf("\n%d events", n)

	for kind, c := range counts {
		fmt.Printf("\n  %-16s %d", kind, c)
	}

	fmt.Println()
}

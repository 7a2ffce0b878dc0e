package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hyperifyio/statscrape/internal/extract"
	"github.com/hyperifyio/statscrape/internal/stats"
)

// debugextract runs the field extractor over a saved page (for example the
// raw_response.txt dump) and prints which stage resolved each field.
func main() {
	source := flag.String("source", "raw", "raw or text")
	profile := flag.String("profile", "", "Extraction profile (YAML or JSON)")
	flag.Parse()

	var (
		b   []byte
		err error
	)
	if flag.NArg() > 0 {
		b, err = os.ReadFile(flag.Arg(0))
	} else {
		b, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}

	ex, err := extract.ForSource(*source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var p *stats.Profile
	if *profile != "" {
		if p, err = stats.LoadProfile(*profile); err != nil {
			fmt.Fprintln(os.Stderr, "profile:", err)
			os.Exit(1)
		}
	}

	res := stats.New(p).Extract(ex.Extract(string(b)).Text)
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Field", "Value", "Stage"})
	for _, k := range stats.Fields {
		if v, ok := res.Get(k); ok {
			t.AppendRow(table.Row{k, v, res.Sources[k]})
		} else {
			t.AppendRow(table.Row{k, "-", "-"})
		}
	}
	t.Render()
	if res.SectionScanned {
		fmt.Println("domestic section numbers:", res.SectionNumbers)
	}
	if !res.Complete() {
		os.Exit(2)
	}
}

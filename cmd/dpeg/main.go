// Command dpeg recognizes input against a PEG described in a YAML grammar
// file, using either of the two derivative engines.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ava12/dpeg/derivs"
	"github.com/ava12/dpeg/dlf"
	"github.com/ava12/dpeg/grammar"
	"github.com/ava12/dpeg/langdef"
)

const version = "0.2.0"

var (
	grammarFile string
	startRule   string
	engine      string
	dbg         bool
	quiet       bool
)

func main() {
	root := &cobra.Command{
		Use:           "dpeg",
		Short:         "derivative-based PEG recognizer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	match := &cobra.Command{
		Use:   "match [input-file]",
		Short: "recognize input against a grammar, exit 0 on match, 1 on no match",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMatch,
	}
	match.Flags().StringVarP(&grammarFile, "grammar", "g", "", "grammar description file")
	match.Flags().StringVarP(&startRule, "rule", "r", "", "start rule (default from grammar file)")
	match.Flags().StringVarP(&engine, "engine", "e", "derivs", "engine: derivs or dlf")
	match.Flags().BoolVar(&dbg, "dbg", false, "trace derivative steps")
	match.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the match/no match line")
	_ = match.MarkFlagRequired("grammar")

	print := &cobra.Command{
		Use:   "print",
		Short: "print the loaded grammar",
		Args:  cobra.NoArgs,
		RunE:  runPrint,
	}
	print.Flags().StringVarP(&grammarFile, "grammar", "g", "", "grammar description file")
	_ = print.MarkFlagRequired("grammar")

	root.AddCommand(match, print, &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(*cobra.Command, []string) {
			fmt.Println("dpeg version " + version)
		},
	})

	if e := root.Execute(); e != nil {
		fmt.Fprintln(os.Stderr, "dpeg:", e)
		os.Exit(2)
	}
}

func loadGrammar() (*langdef.Result, error) {
	return langdef.ParseFile(grammarFile)
}

func runMatch(cmd *cobra.Command, args []string) error {
	r, e := loadGrammar()
	if e != nil {
		return e
	}
	start := startRule
	if start == "" {
		start = r.Start
	}

	var input io.Reader = os.Stdin
	if len(args) > 0 {
		f, e := os.Open(args[0])
		if e != nil {
			return e
		}
		defer f.Close()
		input = f
	}

	trace := zerolog.Nop()
	if dbg {
		trace = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Str("engine", engine).Logger()
	}

	var ok bool
	switch engine {
	case "derivs":
		ok, e = derivs.New(r.Grammar).MatchWith(start, input, derivs.Options{Trace: trace})
	case "dlf":
		ok, e = dlf.New(r.Grammar).MatchWith(start, input, dlf.Options{Trace: trace})
	default:
		return fmt.Errorf("unknown engine %q", engine)
	}
	if e != nil {
		return e
	}

	if ok {
		report("match")
		return nil
	}
	report("no match")
	os.Exit(1)
	return nil
}

func report(msg string) {
	if !quiet {
		fmt.Println(msg)
	}
}

func runPrint(cmd *cobra.Command, args []string) error {
	r, e := loadGrammar()
	if e != nil {
		return e
	}
	printGrammar(os.Stdout, r.Grammar, r.Start)
	return nil
}

func printGrammar(w io.Writer, g *grammar.Grammar, start string) {
	fmt.Fprintf(w, "start: %s\n", start)
	for _, rule := range g.Rules() {
		fmt.Fprintf(w, "%s <- %s\n", rule.Name, rule.Body.String())
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/raymyers/ralph-9cc/pkg/ast"
	"github.com/raymyers/ralph-9cc/pkg/config"
	"github.com/raymyers/ralph-9cc/pkg/diag"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
	"github.com/raymyers/ralph-9cc/pkg/parser"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug flags for dumping intermediate results
var (
	dParse  bool
	dTokens bool
)

// Input and output options
var (
	exprSource string
	configPath string
	colorMode  string
	verbose    bool
	showTypes  bool
	showLocals bool
)

// exprFilename names -e input in diagnostics
const exprFilename = "<expr>"

// errReported marks a failure whose diagnostic has already been written
var errReported = errors.New("error reported")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Normalize single-dash debug flags to double-dash for pflag compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "ralph-9cc: %v\n", err)
		}
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept single-dash style
var debugFlagNames = []string{"dparse", "dtokens"}

// normalizeFlags converts single-dash flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-9cc [file]",
		Short: "ralph-9cc parses and type-checks a small subset of C",
		Long: `ralph-9cc is the front end of a small C compiler. It reads a
program in a C subset (int, char, pointers, arrays, anonymous structs,
statement expressions), resolves every name against its scope and
types every expression, then dumps the typed syntax tree on request.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !cmd.Flags().Changed("expr") {
				cmd.Help()
				return nil
			}
			if len(args) == 1 && cmd.Flags().Changed("expr") {
				return fmt.Errorf("cannot combine a file with -e")
			}

			filename, src, err := readSource(args)
			if err != nil {
				fmt.Fprintf(errOut, "ralph-9cc: %v\n", err)
				return errReported
			}

			cfg, err := loadConfig(cmd, filename)
			if err != nil {
				fmt.Fprintf(errOut, "ralph-9cc: %v\n", err)
				return errReported
			}
			return compile(filename, src, cfg, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump the typed AST after parsing")
	rootCmd.Flags().BoolVarP(&dTokens, "dtokens", "", false, "Dump the token stream")

	rootCmd.Flags().StringVarP(&exprSource, "expr", "e", "", "Compile source given on the command line")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Settings file (default: nearest "+config.FileName+")")
	rootCmd.Flags().StringVar(&colorMode, "color", "", "Color diagnostics (auto|always|never)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report each phase on stderr")
	rootCmd.Flags().BoolVar(&showTypes, "show-types", false, "Annotate dumped statements with their types")
	rootCmd.Flags().BoolVar(&showLocals, "show-locals", false, "List each function's locals in the dump")

	return rootCmd
}

// readSource returns the display name and text of the program to compile
func readSource(args []string) (string, string, error) {
	if len(args) == 0 {
		return exprFilename, exprSource, nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("error reading %s: %w", args[0], err)
	}
	return args[0], string(content), nil
}

// loadConfig resolves the settings file for filename and applies the flags
// the user set on top of it.
func loadConfig(cmd *cobra.Command, filename string) (config.Config, error) {
	dir := "."
	if filename != exprFilename {
		dir = filepath.Dir(filename)
	}
	cfg, err := config.Resolve(configPath, dir)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Diagnostics.Color = colorMode
	}
	if flags.Changed("show-types") {
		cfg.Dump.Types = showTypes
	}
	if flags.Changed("show-locals") {
		cfg.Dump.Locals = showLocals
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// compile runs the front end over src and writes the requested dumps
func compile(filename, src string, cfg config.Config, out, errOut io.Writer) error {
	fail := func(err error) error {
		diag.Render(errOut, filename, src, err, diag.Options{Color: cfg.Diagnostics.UseColor(errOut)})
		return fmt.Errorf("%w: %w", errReported, err)
	}

	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return fail(err)
	}
	if verbose {
		fmt.Fprintf(errOut, "ralph-9cc: %s: %d tokens\n", filename, len(tokens))
	}
	if dTokens {
		dumpTokens(out, tokens)
	}

	program, err := parser.New(tokens).ParseProgram()
	if err != nil {
		return fail(err)
	}
	if verbose {
		fmt.Fprintf(errOut, "ralph-9cc: %s: %d functions, %d globals\n", filename, len(program.Functions), len(program.Globals))
	}

	if dParse {
		return doParse(filename, program, cfg, out, errOut)
	}
	if !dTokens {
		fmt.Fprintf(errOut, "ralph-9cc: checked %s\n", filename)
	}
	return nil
}

// dumpTokens prints one token per line as line:col, kind and text
func dumpTokens(w io.Writer, tokens []lexer.Token) {
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokenEOF:
			fmt.Fprintf(w, "%d:%d\tEOF\n", tok.Line, tok.Column)
		case lexer.TokenInt:
			fmt.Fprintf(w, "%d:%d\t%s\t%d\n", tok.Line, tok.Column, tok.Type, tok.Value)
		case lexer.TokenString:
			fmt.Fprintf(w, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, strings.TrimSuffix(string(tok.Contents), "\x00"))
		default:
			fmt.Fprintf(w, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Literal)
		}
	}
}

// doParse writes the typed AST to a .parsed.c file next to the input and
// to out. Input from -e goes to out only.
func doParse(filename string, program *ast.Program, cfg config.Config, out, errOut io.Writer) error {
	opts := ast.PrintOptions{Types: cfg.Dump.Types, Locals: cfg.Dump.Locals}

	if filename != exprFilename {
		outputFilename := parsedOutputFilename(filename)
		outFile, err := os.Create(outputFilename)
		if err != nil {
			fmt.Fprintf(errOut, "ralph-9cc: error creating %s: %v\n", outputFilename, err)
			return errReported
		}
		defer outFile.Close()
		ast.NewPrinter(outFile, opts).PrintProgram(program)
	}

	// Also print to stdout for convenience
	ast.NewPrinter(out, opts).PrintProgram(program)
	return nil
}

// parsedOutputFilename returns the output filename for -dparse
// input.c -> input.parsed.c
func parsedOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".parsed.c"
	}
	return filename + ".parsed.c"
}

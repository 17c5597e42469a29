// Package main provides the basicc command: it compiles BASIC sources to C,
// keeps them compiled in watch mode, and serves the compiler over HTTP/3.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/basicc-lang/basicc/internal/ast"
	"github.com/basicc-lang/basicc/internal/build"
	"github.com/basicc-lang/basicc/internal/cli"
	"github.com/basicc-lang/basicc/internal/diagnostics"
	"github.com/basicc-lang/basicc/internal/lexer"
	"github.com/basicc-lang/basicc/internal/parser"
	"github.com/basicc-lang/basicc/internal/position"
	"github.com/basicc-lang/basicc/internal/server"
	"github.com/basicc-lang/basicc/internal/vfs"
)

const tool = "basicc"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var commands = []cli.CommandInfo{
	{
		Name:        "build",
		Usage:       "basicc build [-o dir] [-config file] [-workers n] [-color mode] [-debug] [-v] files...",
		Description: "Compile BASIC sources to C",
		Examples:    []string{"basicc build hello.bas", "basicc build -o out -workers 4 *.bas"},
	},
	{
		Name:        "watch",
		Usage:       "basicc watch [build flags] files...",
		Description: "Rebuild sources whenever they change",
		Examples:    []string{"basicc watch -o out loop.bas"},
	},
	{
		Name:        "serve",
		Usage:       "basicc serve [-addr host:port] [-cert file -key file] [-v]",
		Description: "Serve the compiler over HTTP/3",
		Examples:    []string{"basicc serve -addr 127.0.0.1:8443"},
	},
	{
		Name:        "tokens",
		Usage:       "basicc tokens file",
		Description: "Print the token stream of a source file",
	},
	{
		Name:        "ast",
		Usage:       "basicc ast file",
		Description: "Print the grammar tree of a source file",
	},
	{
		Name:        "version",
		Usage:       "basicc version [--json]",
		Description: "Show version information",
	},
	{
		Name:        "help",
		Usage:       "basicc help [command]",
		Description: "Show help",
	},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		cli.PrintUsage(stderr, tool, commands)
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "help", "-h", "--help":
		return help(rest, stdout, stderr)
	case "version", "-version", "--version":
		jsonOutput := false
		for _, arg := range rest {
			if arg == "--json" || arg == "-json" || arg == "-j" {
				jsonOutput = true
			}
		}
		if err := cli.PrintVersion(stdout, tool, jsonOutput); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		return exitOK
	case "build":
		return buildCmd(rest, stdout, stderr)
	case "watch":
		return watchCmd(rest, stdout, stderr)
	case "serve":
		return serveCmd(rest, stdout, stderr)
	case "tokens":
		return tokensCmd(rest, stdout, stderr)
	case "ast":
		return astCmd(rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", sub)
		cli.PrintUsage(stderr, tool, commands)
		return exitUsage
	}
}

func help(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		cli.PrintUsage(stdout, tool, commands)
		return exitOK
	}
	for _, cmd := range commands {
		if cmd.Name == args[0] {
			cli.PrintCommandUsage(stdout, tool, cmd)
			return exitOK
		}
	}
	fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
	return exitUsage
}

// settings are the flags shared by build, watch and serve.
type settings struct {
	fs     *flag.FlagSet
	stderr io.Writer

	configPath string
	outDir     string
	workers    int
	color      string
	addr       string
	cert, key  string
	verbose    bool
	debug      bool
}

func newFlagSet(name string, stderr io.Writer) *settings {
	s := &settings{fs: flag.NewFlagSet(name, flag.ContinueOnError), stderr: stderr}
	s.fs.SetOutput(stderr)
	s.fs.StringVar(&s.configPath, "config", "", "config file (default ./"+cli.DefaultConfigFile+" if present)")
	s.fs.BoolVar(&s.verbose, "v", false, "verbose output")
	s.fs.BoolVar(&s.debug, "debug", false, "trace the parser")
	s.fs.StringVar(&s.color, "color", "", "colour diagnostics: auto, always or never")
	for _, c := range commands {
		if c.Name == name {
			usage := c.Usage
			s.fs.Usage = func() {
				fmt.Fprintf(stderr, "usage: %s\n", usage)
				s.fs.PrintDefaults()
			}
		}
	}
	return s
}

func (s *settings) buildFlags() *settings {
	s.fs.StringVar(&s.outDir, "o", "", "output directory (default: next to each input)")
	s.fs.IntVar(&s.workers, "workers", 0, "files compiled in parallel (default: number of CPUs)")
	return s
}

func (s *settings) serveFlags() *settings {
	s.fs.StringVar(&s.addr, "addr", "", "UDP listen address")
	s.fs.StringVar(&s.cert, "cert", "", "TLS certificate file (default: self-signed)")
	s.fs.StringVar(&s.key, "key", "", "TLS key file")
	return s
}

// parse parses args and merges the result over the config file: flags the
// user set win. Errors are reported on stderr.
func (s *settings) parse(args []string) (*cli.Config, error) {
	// the flag package prints its own errors
	if err := s.fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := s.load()
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", tool, err)
		return nil, err
	}
	return cfg, nil
}

func (s *settings) load() (*cli.Config, error) {
	path := s.configPath
	if path == "" {
		path = cli.DefaultConfigFile
	}
	cfg, err := cli.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	var flagErr error
	s.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutDir = s.outDir
		case "workers":
			cfg.Workers = s.workers
		case "color":
			mode, err := cli.ParseColorMode(s.color)
			if err != nil {
				flagErr = err
			}
			cfg.Color = mode
		case "addr":
			cfg.ServerAddr = s.addr
		case "v":
			cfg.Verbose = s.verbose
		case "debug":
			cfg.Debug = s.debug
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagExit maps a settings.parse error to an exit code. The error has
// already been printed.
func flagExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

func colorFor(cfg *cli.Config, w io.Writer) bool {
	return cli.UseColor(cfg.Color, fileOf(w))
}

// report renders a per-file compile error.
func report(stderr io.Writer, res build.Result, color bool) {
	d := diagnostics.From(res.Err)
	var src *position.SourceFile
	if res.Source != nil {
		src = position.NewSourceFile(res.Input, string(res.Source))
	}
	_ = diagnostics.Render(stderr, d, src, color)
}

func newBuilder(cfg *cli.Config, log *cli.Logger) *build.Builder {
	return &build.Builder{
		FS:      vfs.NewOS(),
		Workers: cfg.Workers,
		OutDir:  cfg.OutDir,
		Cache:   build.NewInMemoryLRUCache(0),
		Logger:  log,
	}
}

func buildCmd(args []string, stdout, stderr io.Writer) int {
	s := newFlagSet("build", stderr).buildFlags()
	cfg, err := s.parse(args)
	if err != nil {
		return flagExit(err)
	}
	files := s.fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "basicc build: no input files")
		s.fs.Usage()
		return exitUsage
	}

	log := cli.NewLogger(stderr, cfg.Verbose, cfg.Debug)
	color := colorFor(cfg, stderr)
	b := newBuilder(cfg, log)

	results, stats, err := b.Build(context.Background(), files)
	if err != nil && results == nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return exitUsage
	}
	for _, res := range results {
		if res.Err != nil {
			report(stderr, res, color)
			continue
		}
		log.Info("%s -> %s (%s)", res.Input, res.Output, res.Took.Round(time.Microsecond))
	}
	log.Info("%d files: %d ok, %d failed, %d max parallel", stats.Total, stats.Succeeded, stats.Failed, stats.MaxParallel)

	if stats.Failed > 0 || err != nil {
		return exitFailure
	}
	return exitOK
}

func watchCmd(args []string, stdout, stderr io.Writer) int {
	s := newFlagSet("watch", stderr).buildFlags()
	cfg, err := s.parse(args)
	if err != nil {
		return flagExit(err)
	}
	files := s.fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "basicc watch: no input files")
		s.fs.Usage()
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := cli.NewLogger(stderr, cfg.Verbose, cfg.Debug)
	color := colorFor(cfg, stderr)
	b := newBuilder(cfg, log)

	w, err := vfs.NewWatcher(ctx, b.FS, 250*time.Millisecond)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return exitFailure
	}
	defer w.Close()

	fmt.Fprintf(stdout, "watching %d files, press Ctrl-C to stop\n", len(files))
	err = b.Watch(ctx, w, files, func(res build.Result) {
		if res.Err != nil {
			report(stderr, res, color)
			return
		}
		if res.Cached {
			log.Info("%s unchanged", res.Input)
			return
		}
		fmt.Fprintf(stdout, "%s -> %s\n", res.Input, res.Output)
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return exitFailure
	}
	return exitOK
}

func serveCmd(args []string, stdout, stderr io.Writer) int {
	s := newFlagSet("serve", stderr).serveFlags()
	cfg, err := s.parse(args)
	if err != nil {
		return flagExit(err)
	}
	if s.fs.NArg() > 0 {
		fmt.Fprintf(stderr, "basicc serve: unexpected arguments %v\n", s.fs.Args())
		return exitUsage
	}
	if (s.cert == "") != (s.key == "") {
		fmt.Fprintln(stderr, "basicc serve: -cert and -key must be given together")
		return exitUsage
	}

	log := cli.NewLogger(stderr, cfg.Verbose, cfg.Debug)

	var tlsCfg *tls.Config
	if s.cert != "" {
		tlsCfg, err = server.LoadTLSConfig(s.cert, s.key)
	} else {
		tlsCfg, err = server.SelfSignedTLS()
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := server.NewHTTP3Server(cfg.ServerAddr, tlsCfg, server.NewHandler(log))
	err = srv.Run(ctx, func(addr string) {
		fmt.Fprintf(stdout, "listening on https://%s (HTTP/3)\n", addr)
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return exitFailure
	}
	return exitOK
}

// readSource reads the single file argument of tokens and ast.
func readSource(cmd string, args []string, stderr io.Writer) (string, string, int) {
	if len(args) != 1 {
		fmt.Fprintf(stderr, "usage: basicc %s file\n", cmd)
		return "", "", exitUsage
	}
	data, err := vfs.ReadFile(vfs.NewOS(), args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to read %s: %v\n", tool, args[0], err)
		return "", "", exitFailure
	}
	return args[0], string(data), exitOK
}

func renderSourceError(stderr io.Writer, name, src string, err error) int {
	d := diagnostics.From(err)
	color := cli.UseColor(cli.ColorAuto, fileOf(stderr))
	_ = diagnostics.Render(stderr, d, position.NewSourceFile(name, src), color)
	return exitFailure
}

func fileOf(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

func tokensCmd(args []string, stdout, stderr io.Writer) int {
	name, src, code := readSource("tokens", args, stderr)
	if code != exitOK {
		return code
	}
	tokens, err := lexer.TokenizeFile(src, name)
	if err != nil {
		return renderSourceError(stderr, name, src, err)
	}
	for _, tok := range tokens {
		pos := tok.Pos()
		fmt.Fprintf(stdout, "%d:%d\t%s\n", pos.Line, pos.Column, tok)
	}
	return exitOK
}

func astCmd(args []string, stdout, stderr io.Writer) int {
	name, src, code := readSource("ast", args, stderr)
	if code != exitOK {
		return code
	}
	tokens, err := lexer.TokenizeFile(src, name)
	if err != nil {
		return renderSourceError(stderr, name, src, err)
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		return renderSourceError(stderr, name, src, err)
	}
	if err := ast.Fprint(stdout, prog); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return exitFailure
	}
	return exitOK
}

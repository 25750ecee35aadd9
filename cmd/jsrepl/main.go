package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/jsbind"
	"github.com/wippyai/jsbind/binding"
	"github.com/wippyai/jsbind/engine"
	"github.com/wippyai/jsbind/enginetest"
	"github.com/wippyai/jsbind/modules/sqlite"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to engine wasm binary (default: built-in reference engine)")
		expr        = flag.String("e", "", "Evaluate source and exit")
		snapshot    = flag.String("snapshot", "", "Execute a precompiled snapshot file and exit")
		configPath  = flag.String("config", "", "Path to TOML configuration")
		interactive = flag.Bool("i", false, "Interactive REPL")
		strict      = flag.Bool("strict", false, "Evaluate in strict mode")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *wasmFile != "" {
		cfg.Engine.Wasm = *wasmFile
	}
	if *strict {
		cfg.REPL.Strict = true
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if err := run(cfg, *expr, *snapshot, flag.Arg(0), *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config, expr, snapshotFile, scriptFile string, interactive bool) error {
	ctx := context.Background()

	eng, cleanup, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	binding.Init(eng)
	defer binding.Cleanup()

	if cfg.Modules.Sqlite {
		global := binding.Global()
		sqlite.Register(global)
		global.Free()
	}

	switch {
	case expr != "":
		return evalAndPrint(expr, cfg.REPL.Strict)

	case snapshotFile != "":
		data, err := os.ReadFile(snapshotFile)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		r := binding.ExecSnapshot(data)
		defer r.Free()
		return report(&r)

	case scriptFile != "":
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		return evalAndPrint(string(data), cfg.REPL.Strict)

	case interactive || term.IsTerminal(int(os.Stdin.Fd())):
		return runInteractive(cfg)

	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return evalAndPrint(string(data), cfg.REPL.Strict)
	}
}

func newEngine(ctx context.Context, cfg *Config) (jsbind.Engine, func(), error) {
	if cfg.Engine.Wasm == "" {
		return enginetest.New(), func() {}, nil
	}

	data, err := os.ReadFile(cfg.Engine.Wasm)
	if err != nil {
		return nil, nil, fmt.Errorf("read engine binary: %w", err)
	}
	e, err := engine.New(ctx, data, &engine.Config{MemoryLimitPages: cfg.Engine.MemoryLimitPages})
	if err != nil {
		return nil, nil, err
	}
	return e, func() { e.Close(ctx) }, nil
}

func evalAndPrint(source string, strict bool) error {
	r := binding.Eval(source, strict)
	defer r.Free()
	return report(&r)
}

// report prints an execution result: the value on stdout for success, the
// uncaught exception on stderr with a failing exit for script errors.
func report(r *binding.Result) error {
	if r.IsException() {
		fmt.Fprintf(os.Stderr, "Uncaught %s\n", r.Value().GetString())
		os.Exit(1)
	}
	if !r.Value().IsUndefined() {
		fmt.Println(r.Value().GetString())
	}
	return nil
}

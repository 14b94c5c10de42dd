/*
Command afrim runs the afrim input method core as a standalone process.

Usage:

	afrim [flags] [config-file]

If config-file is omitted, afrim looks for a config in the platform config
directory (DefaultConfigPath). Two modes are supported:

  - CLI mode (default): an interactive REPL that replays typed lines as
    keystrokes and prints the commands and suggestions they produce.
  - IPC mode (-ipc): a msgpack request/response server over stdin/stdout,
    for driving the core from an editor plugin or integration test.

Flags:

	-ipc       run as a msgpack IPC server over stdin/stdout instead of the REPL
	-d         enable debug-level logging
	-version   print version information and exit
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afrim-go/afrim/internal/cli"
	"github.com/afrim-go/afrim/internal/logger"
	"github.com/afrim-go/afrim/internal/utils"
	"github.com/afrim-go/afrim/pkg/config"
	"github.com/afrim-go/afrim/pkg/ipc"
	"github.com/afrim-go/afrim/pkg/memory"
	"github.com/afrim-go/afrim/pkg/preprocessor"
	"github.com/afrim-go/afrim/pkg/translator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const version = "0.1.0-beta"

func sigHandler(cancel func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
		os.Exit(0)
	}()
}

func main() {
	ipcMode := flag.Bool("ipc", false, "run as a msgpack IPC server over stdin/stdout")
	debug := flag.Bool("d", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		style := lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}).Bold(true)
		fmt.Println(style.Render("afrim") + " " + version)
		return
	}

	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	lg := logger.Default("afrim")
	log.SetDefault(lg)

	sigHandler(func() {})

	resolver, err := utils.NewPathResolver()
	if err != nil {
		lg.Fatalf("resolving paths: %v", err)
	}

	configPath := resolver.DefaultConfigPath()
	if flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}

	cfg, warnings, err := config.Load(configPath, config.OS)
	if err != nil {
		lg.Fatalf("loading config %s: %v", configPath, err)
	}
	config.LogWarnings(lg, warnings)

	trie, tr, err := buildEngine(cfg, configPath, lg)
	if err != nil {
		lg.Fatalf("building engine: %v", err)
	}

	pre := preprocessor.New(trie, preprocessor.Options{
		BufferSize:     cfg.Core.BufferSize,
		AutoCapitalize: cfg.Core.AutoCapitalize,
		PauseWindow:    time.Duration(cfg.Core.PauseWindowMs) * time.Millisecond,
	})

	if *ipcMode {
		srv := ipc.NewServer(pre, tr, os.Stdin, os.Stdout, lg)
		if err := srv.Serve(); err != nil {
			lg.Fatalf("ipc serve: %v", err)
		}
		return
	}

	repl := cli.New(pre, tr)
	if err := repl.Start(); err != nil {
		lg.Fatalf("repl: %v", err)
	}
}

// buildEngine populates a Trie from cfg.Data (for Memory's sequence
// recognition) and a Translator from cfg.Translation plus any registered
// scripts (for dictionary/completion/fuzzy suggestions).
func buildEngine(cfg *config.Config, configPath string, lg *log.Logger) (*memory.Trie, *translator.Translator, error) {
	trie := memory.New()
	for _, e := range cfg.Data {
		for _, text := range e.Texts {
			trie.Insert([]rune(e.Code), text)
		}
	}

	tr := translator.New(translator.Options{
		PageSize:       cfg.Core.PageSize,
		FuzzyThreshold: cfg.Core.FuzzyThreshold,
		ScriptBudget:   cfg.Core.ScriptOpBudget,
		Logger:         lg,
	})
	for _, e := range cfg.Translation {
		tr.Insert(e.Code, e.Texts, e.AutoCommit)
	}
	for name, relPath := range cfg.Translators {
		scriptPath := utils.ResolveRelativePath(configPath, relPath)
		src, err := os.ReadFile(scriptPath)
		if err != nil {
			lg.Warnf("skipping translator %q: %v", name, err)
			continue
		}
		if err := tr.RegisterScript(name, string(src)); err != nil {
			lg.Warnf("compiling translator %q: %v", name, err)
		}
	}
	return trie, tr, nil
}

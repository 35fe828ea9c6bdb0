/*
Package main implements the corfu completion engine and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

Corfu provides incremental in-buffer completion: providers compute
candidates for the text before the cursor, a session engine narrows,
selects and commits them, and a popup formatter renders the visible
window. It can operate as a MessagePack IPC provider server for
integration with text editors, or as a CLI application for testing
and debugging.

# Usage

Start the provider server with default settings:

	corfu

Use a custom word list and enable debug mode:

	corfu -data /path/to/words.txt -d

Run in CLI mode for interactive testing:

	corfu -c -data words.txt

The word list is a plain text file of "word frequency" lines. Words
are ranked by frequency and filtered by configurable thresholds.

# Configuration

Runtime configuration lives in a TOML file:

	[popup]
	rows = 10
	margin = 2
	min_width = 15
	max_width = 100

	[session]
	cycle = false
	preselect_first = true
	auto = false
	auto_prefix = 3
	auto_delay_ms = 200
	quit_no_match = "1s"

The config file is created with defaults if it doesn't exist. A
partially invalid file is recovered section by section.

# IPC Protocol

Server mode communicates via MessagePack over stdin/stdout. A host
editor sends the field text and cursor, and receives candidates plus
the base offset they replace from:

	{"id": 1, "t": "hel", "c": 3}

	{"id": 1, "b": 0, "i": [{"w": "hello"}, {"w": "help"}], "tt": 145}

# CLI Mode

CLI mode wires the full session engine over an in-memory buffer for
interactive testing. Typed lines edit the field, dot commands drive
selection and commits:

	.next .prev .first .last .tab .ret .reset .doc .quit

This mode is primarily intended for development and testing new
features before deploying to server mode.

# Command Line Flags

	-data string
	    Word list file ("word frequency" lines)
	-config string
	    Config file path (default resolved under the user config dir)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-words int
	    Maximum words to load (0 for all)
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anticomputer/corfu/internal/cli"
	"github.com/anticomputer/corfu/pkg/config"
	"github.com/anticomputer/corfu/pkg/host"
	"github.com/anticomputer/corfu/pkg/provider"
	"github.com/anticomputer/corfu/pkg/server"
	"github.com/anticomputer/corfu/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "corfu"
	gh      = "https://github.com/anticomputer/corfu"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, provider and either the server loop or the CLI
// harness. main() does not implement logic for them and only manages
// the flow.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	wordList := flag.String("data", defaults.Dict.WordList, "Word list file with 'word frequency' lines")
	configPath := flag.String("config", "", "Config file path (default: user config dir)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	wordLimit := flag.Int("words", defaults.Dict.MaxWords, "Maximum number of words to load (use 0 for all words)")

	flag.Parse()

	if *showVersion {
		showVersionInfo()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", activePath)

	dict := provider.NewDict(cfg.Dict.MinFreqThreshold, cfg.Dict.MinFreqShort)
	if *wordList != "" {
		if err := dict.LoadWordList(*wordList, *wordLimit); err != nil {
			log.Fatalf("Failed to load word list: %v", err)
		}
		log.Debug("Dictionary loaded", "stats", dict.Stats())
	} else {
		log.Warn("No word list specified, running with empty dict...")
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		buffer := host.NewBuffer("")
		opts := session.OptionsFromConfig(cfg)
		opts.OnExit = func(finalText string, status session.Status) {
			log.Printf("committed %q (%s)", finalText, status)
		}
		opts.OnEcho = func(doc string) {
			log.Print(doc)
		}
		engine := session.NewEngine(buffer, dict, opts)
		handler := cli.NewInputHandler(engine, buffer)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(dict)
	showStartupInfo(activePath)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// showVersionInfo prints the styled version banner.
func showVersionInfo() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ Corfu ] Incremental completion, narrowed and committed!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=======")
	println(" Corfu ")
	println("=======")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	println("=======")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

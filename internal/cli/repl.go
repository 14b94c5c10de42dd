// Package cli provides an interactive terminal loop for driving the
// Preprocessor/Translator/Orchestrator pipeline for debugging and manual
// testing, outside of the IPC transport.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/afrim-go/afrim/internal/utils"
	"github.com/afrim-go/afrim/pkg/orchestrator"
	"github.com/afrim-go/afrim/pkg/preprocessor"
	"github.com/afrim-go/afrim/pkg/translator"
	"github.com/charmbracelet/log"
)

var (
	commandStyle    = "\033[38;5;75m%s\033[0m"
	suggestionStyle = "\033[38;5;78m%s\033[0m"
)

// REPL reads individual characters from stdin, line by line, and feeds them
// through an Orchestrator as key events, printing the commands and
// suggestions each one produces.
type REPL struct {
	orch         *orchestrator.Orchestrator
	requestCount int
}

// replSink adapts a REPL to the Orchestrator's TypingSink/SuggestionSink
// interfaces so output can be printed as soon as it's produced.
type replSink struct{}

func (replSink) Apply(cmds []preprocessor.Command) {
	for _, c := range cmds {
		printCommand(c)
	}
}

func (replSink) Suggest(preds []translator.Predicate) {
	printSuggestions(preds)
}

// New builds a REPL wired over pre and tr.
func New(pre *preprocessor.Preprocessor, tr *translator.Translator) *REPL {
	sink := replSink{}
	return &REPL{orch: orchestrator.New(pre, tr, sink, sink)}
}

// Start begins the read loop. Each line of input is replayed through the
// Orchestrator one rune at a time, followed by an implicit commit boundary
// (Enter), matching how a real input method delivers keystrokes.
func (r *REPL) Start() error {
	log.Print("afrim CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a sequence and press Enter to replay it as keystrokes (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		r.handleLine(line)
	}
}

// handleLine replays one line as a sequence of Char key-press events.
// A leading ":" switches to command mode: ":clear" resets the session,
// ":commit TEXT" force-commits TEXT and clears the suggestion list.
func (r *REPL) handleLine(line string) {
	r.requestCount++

	if strings.HasPrefix(line, ":") {
		r.handleDirective(strings.TrimPrefix(line, ":"))
		return
	}

	if !utils.IsValidInput(line) {
		log.Warnf("ignoring input line %q (repetitive, numeric, or contains special characters)", line)
		return
	}

	for _, ch := range line {
		r.orch.HandleEvent(preprocessor.Event{
			Direction: preprocessor.KeyPress,
			Key:       preprocessor.KeyChar,
			Char:      ch,
		})
	}
}

func (r *REPL) handleDirective(directive string) {
	switch {
	case directive == "clear":
		r.orch.Clear()
		log.Info("session cleared")
	case strings.HasPrefix(directive, "commit "):
		text := strings.TrimPrefix(directive, "commit ")
		r.orch.Commit(text)
	default:
		log.Errorf("unknown directive: %q", directive)
	}
}

func printCommand(c preprocessor.Command) {
	switch c.Kind {
	case preprocessor.CommandCommitText:
		log.Printf(commandStyle, fmt.Sprintf("commit %q", c.Text))
	case preprocessor.CommandDelete:
		log.Printf(commandStyle, fmt.Sprintf("delete %d", c.N))
	case preprocessor.CommandPause:
		log.Print("-- paused --")
	case preprocessor.CommandResume:
		log.Print("-- resumed --")
	case preprocessor.CommandKey:
		log.Debugf("passthrough key %v", c.Key)
	}
}

func printSuggestions(preds []translator.Predicate) {
	if len(preds) == 0 {
		return
	}
	filter := utils.NewSuggestionFilter("")
	shown := 0
	log.Printf("%d suggestion(s):", len(preds))
	for _, p := range preds {
		first := ""
		if len(p.Texts) > 0 {
			first = p.Texts[0]
		}
		if first == "" || !filter.ShouldInclude(first) {
			continue
		}
		shown++
		log.Printf("%2d. %s  %s", shown, fmt.Sprintf(suggestionStyle, first), strings.Join(p.Texts[min(1, len(p.Texts)):], ", "))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

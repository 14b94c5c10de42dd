/*
Package ipc implements a msgpack request/response protocol over stdin/stdout
for driving the Frontend API from another process — scripted integration
tests, or a frontend written in a language other than Go.

Each request is a single msgpack-encoded map with an "id" field and an "op"
field selecting the operation:

	{"id": "1", "op": "key", "char": "a"}
	{"id": "2", "op": "key", "key": "backspace"}
	{"id": "3", "op": "commit", "text": "hello"}
	{"id": "4", "op": "clear"}

The server replies with one msgpack-encoded response per request, containing
the commands the Preprocessor emitted and, if the event produced a committed
fragment, the Translator's ranked suggestions:

	{"id": "1", "commands": [{"kind": "commit_text", "text": "..."}], "suggestions": [...]}

Messages are processed synchronously, one at a time, matching the core's
single-threaded cooperative concurrency model.
*/
package ipc

import (
	"errors"
	"io"

	"github.com/afrim-go/afrim/pkg/orchestrator"
	"github.com/afrim-go/afrim/pkg/preprocessor"
	"github.com/afrim-go/afrim/pkg/translator"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Request is one incoming IPC message.
type Request struct {
	ID        string `msgpack:"id"`
	Op        string `msgpack:"op"`
	Key       string `msgpack:"key,omitempty"`
	Char      string `msgpack:"char,omitempty"`
	Direction string `msgpack:"dir,omitempty"`
	Text      string `msgpack:"text,omitempty"`
}

// CommandOut is the wire form of a preprocessor.Command.
type CommandOut struct {
	Kind string `msgpack:"kind"`
	Text string `msgpack:"text,omitempty"`
	N    int    `msgpack:"n,omitempty"`
	Key  string `msgpack:"key,omitempty"`
}

// PredicateOut is the wire form of a translator.Predicate.
type PredicateOut struct {
	Code       string   `msgpack:"code"`
	Remaining  string   `msgpack:"remaining,omitempty"`
	Texts      []string `msgpack:"texts"`
	AutoCommit bool     `msgpack:"auto_commit,omitempty"`
}

// Response is one outgoing IPC message.
type Response struct {
	ID          string         `msgpack:"id"`
	Commands    []CommandOut   `msgpack:"commands,omitempty"`
	Suggestions []PredicateOut `msgpack:"suggestions,omitempty"`
	Error       string         `msgpack:"error,omitempty"`
}

var keyNames = map[string]preprocessor.Key{
	"backspace":      preprocessor.KeyBackspace,
	"capslock":       preprocessor.KeyCapsLock,
	"escape":         preprocessor.KeyEscape,
	"pause":          preprocessor.KeyPause,
	"control_left":   preprocessor.KeyControlLeft,
	"control_right":  preprocessor.KeyControlRight,
	"shift":          preprocessor.KeyShift,
	"other":          preprocessor.KeyOther,
}

// captureSink is the Orchestrator's typing/suggestion sink for the
// duration of one IPC request: it just remembers the last call's payload.
type captureSink struct {
	cmds  []preprocessor.Command
	preds []translator.Predicate
}

func (c *captureSink) Apply(cmds []preprocessor.Command)    { c.cmds = cmds }
func (c *captureSink) Suggest(preds []translator.Predicate) { c.preds = preds }
func (c *captureSink) reset()                               { c.cmds, c.preds = nil, nil }

// Server drives one Orchestrator over a msgpack-framed stdin/stdout stream.
type Server struct {
	orch    *orchestrator.Orchestrator
	capture *captureSink
	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
	logger  *log.Logger
}

// NewServer builds an Orchestrator over pre and tr, wired to an internal
// capture sink, and serves msgpack IPC requests over r/w (typically
// os.Stdin/os.Stdout).
func NewServer(pre *preprocessor.Preprocessor, tr *translator.Translator, r io.Reader, w io.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	capture := &captureSink{}
	return &Server{
		orch:    orchestrator.New(pre, tr, capture, capture),
		capture: capture,
		dec:     msgpack.NewDecoder(r),
		enc:     msgpack.NewEncoder(w),
		logger:  logger,
	}
}

// Serve reads requests until EOF or a fatal decode error, replying to each
// in turn. It never returns an error for a malformed individual request —
// only for a broken transport.
func (s *Server) Serve() error {
	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		resp := s.handle(req)
		if err := s.enc.Encode(&resp); err != nil {
			return err
		}
	}
}

func (s *Server) handle(req Request) Response {
	resp := Response{ID: req.ID}
	s.capture.reset()
	switch req.Op {
	case "key":
		ev, err := toEvent(req)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		s.orch.HandleEvent(ev)
		resp.Commands = toCommandsOut(s.capture.cmds)
		resp.Suggestions = toPredicatesOut(s.capture.preds)
	case "commit":
		s.orch.Commit(req.Text)
		resp.Commands = toCommandsOut(s.capture.cmds)
	case "clear":
		s.orch.Clear()
	default:
		resp.Error = "ipc: unknown op " + req.Op
	}
	return resp
}

func toEvent(req Request) (preprocessor.Event, error) {
	dir := preprocessor.KeyPress
	if req.Direction == "release" {
		dir = preprocessor.KeyRelease
	}
	if req.Char != "" {
		runes := []rune(req.Char)
		return preprocessor.Event{Direction: dir, Key: preprocessor.KeyChar, Char: runes[0]}, nil
	}
	k, ok := keyNames[req.Key]
	if !ok {
		return preprocessor.Event{}, errors.New("ipc: unknown key " + req.Key)
	}
	return preprocessor.Event{Direction: dir, Key: k}, nil
}

func toCommandsOut(cmds []preprocessor.Command) []CommandOut {
	out := make([]CommandOut, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, CommandOut{Kind: commandKindName(c.Kind), Text: c.Text, N: c.N, Key: keyName(c.Key)})
	}
	return out
}

func toPredicatesOut(preds []translator.Predicate) []PredicateOut {
	out := make([]PredicateOut, 0, len(preds))
	for _, p := range preds {
		out = append(out, PredicateOut{Code: p.Code, Remaining: p.Remaining, Texts: p.Texts, AutoCommit: p.AutoCommit})
	}
	return out
}

func commandKindName(k preprocessor.CommandKind) string {
	switch k {
	case preprocessor.CommandPause:
		return "pause"
	case preprocessor.CommandResume:
		return "resume"
	case preprocessor.CommandCommitText:
		return "commit_text"
	case preprocessor.CommandDelete:
		return "delete"
	case preprocessor.CommandKey:
		return "key"
	default:
		return "nop"
	}
}

func keyName(k preprocessor.Key) string {
	for name, v := range keyNames {
		if v == k {
			return name
		}
	}
	return ""
}

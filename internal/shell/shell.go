// Package shell implements the interactive readline surface over the engine:
// scope/operation commands for mindmaps, nodes, and the per-session canvas
// camera. One command executes at a time.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"mindcanvas/internal/canvas"
	"mindcanvas/internal/config"
	"mindcanvas/internal/data"
	"mindcanvas/internal/event"
	"mindcanvas/internal/logging"
	"mindcanvas/internal/model"
	"mindcanvas/internal/summarize"
)

// ErrExit signals a requested shutdown to the caller of Run.
var ErrExit = errors.New("exit requested")

// Shell is one interactive session: the engine plus a selected mindmap, a
// camera, and the gesture machine driving it.
type Shell struct {
	mgr        *data.Manager
	summarizer *summarize.Client
	logger     logging.Logger
	out        io.Writer

	camera *canvas.Camera
	input  *canvas.Machine

	mu       sync.Mutex
	selected string // id of the selected mindmap, empty when none

	rl *readline.Instance
}

// New wires a shell over the engine. Output goes to out (readline's stdout
// replaces it inside Run). The summarizer may be nil or disabled.
func New(out io.Writer, mgr *data.Manager, summarizer *summarize.Client, cfg config.CanvasConfig, logger logging.Logger) *Shell {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	viewport := canvas.DefaultViewport
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		viewport = canvas.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	}
	camera := canvas.NewCamera(viewport)
	return &Shell{
		mgr:        mgr,
		summarizer: summarizer,
		logger:     logger,
		out:        out,
		camera:     camera,
		input:      canvas.NewMachine(camera),
	}
}

// Run reads and executes commands until exit, EOF, or interrupt on an empty
// line. Reload events from the watcher print a notice between prompts.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()
	s.rl = rl
	s.out = rl.Stdout()

	s.mgr.Events().Subscribe(event.CollectionReloaded, func(e event.Event) {
		count, _ := e.Data.(int)
		s.printNotice(fmt.Sprintf("collection reloaded from disk (%d mindmaps)", count))
		if id := s.selectedID(); id != "" {
			if _, ok := s.mgr.MindmapByID(id); !ok {
				s.setSelected("")
				s.printNotice("selected mindmap is gone; selection cleared")
			}
		}
	})

	fmt.Fprintln(s.out, styleHeader.Render("mindcanvas")+" interactive shell, type 'help' for commands")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrExit) {
				break
			}
			s.printError(err)
		}
		rl.SetPrompt(s.prompt())
	}
	fmt.Fprintln(s.out, "bye")
	return nil
}

// Execute parses and runs a single command line.
func (s *Shell) Execute(ctx context.Context, line string) error {
	args := ParseArgs(line)
	if len(args) == 0 {
		return nil
	}
	cmd := parseCommand(args)
	switch cmd.Scope {
	case "help":
		s.printHelp(args[1:])
		return nil
	case "exit", "quit":
		return ErrExit
	case "system":
		return s.runSystem(cmd)
	case "mindmap":
		return s.runMindmap(ctx, cmd)
	case "node":
		return s.runNode(ctx, cmd)
	case "canvas":
		return s.runCanvas(ctx, cmd)
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd.Scope)
	}
}

// runSystem handles the system scope. Bare "exit", "quit", and "help" stay
// usable without the scope prefix.
func (s *Shell) runSystem(cmd Command) error {
	switch cmd.Operation {
	case "exit", "quit":
		return ErrExit
	case "help", "":
		s.printHelp(cmd.Args)
		return nil
	default:
		return fmt.Errorf("unknown system operation %q (try 'help system')", cmd.Operation)
	}
}

func (s *Shell) prompt() string {
	if name := s.selectedName(); name != "" {
		return fmt.Sprintf("mindcanvas(%s)> ", name)
	}
	return "mindcanvas> "
}

func (s *Shell) selectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Shell) setSelected(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

func (s *Shell) selectedName() string {
	id := s.selectedID()
	if id == "" {
		return ""
	}
	mm, ok := s.mgr.MindmapByID(id)
	if !ok {
		return ""
	}
	return mm.Name
}

// resolveMindmap interprets an empty ref as the current selection, otherwise
// it defers to FindMindmap.
func (s *Shell) resolveMindmap(ref string) (*model.Mindmap, error) {
	if ref == "" {
		id := s.selectedID()
		if id == "" {
			return nil, errors.New("no mindmap selected (use: mindmap select <name>)")
		}
		mm, ok := s.mgr.MindmapByID(id)
		if !ok {
			return nil, errors.New("selected mindmap no longer exists")
		}
		return mm, nil
	}
	return FindMindmap(s.mgr, ref)
}

// FindMindmap resolves a mindmap by name (case-insensitive), exact id, or
// unique id prefix.
func FindMindmap(mgr *data.Manager, ref string) (*model.Mindmap, error) {
	var byName, byPrefix []*model.Mindmap
	for _, m := range mgr.Mindmaps() {
		if m.ID == ref {
			return m, nil
		}
		if strings.EqualFold(m.Name, ref) {
			byName = append(byName, m)
		}
		if strings.HasPrefix(m.ID, ref) {
			byPrefix = append(byPrefix, m)
		}
	}
	switch {
	case len(byName) == 1:
		return byName[0], nil
	case len(byName) > 1:
		return nil, fmt.Errorf("name %q is ambiguous, use the id", ref)
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) > 1:
		return nil, fmt.Errorf("id prefix %q is ambiguous", ref)
	}
	return nil, fmt.Errorf("no mindmap matches %q", ref)
}

// FindNode resolves a node within mm by exact id, unique id prefix, or exact
// title (case-insensitive).
func FindNode(mm *model.Mindmap, ref string) (*model.NodeData, error) {
	if n, ok := mm.Data.Nodes[ref]; ok && n != nil {
		return n, nil
	}
	var byPrefix, byTitle []*model.NodeData
	for _, n := range mm.Data.Nodes {
		if n == nil {
			continue
		}
		if strings.HasPrefix(n.ID, ref) {
			byPrefix = append(byPrefix, n)
		}
		if strings.EqualFold(n.Title, ref) {
			byTitle = append(byTitle, n)
		}
	}
	switch {
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) > 1:
		return nil, fmt.Errorf("id prefix %q is ambiguous", ref)
	case len(byTitle) == 1:
		return byTitle[0], nil
	case len(byTitle) > 1:
		return nil, fmt.Errorf("title %q is ambiguous, use the id", ref)
	}
	return nil, fmt.Errorf("no node matches %q in %q", ref, mm.Name)
}

func (s *Shell) printOK(msg string) {
	fmt.Fprintln(s.out, styleOK.Render(msg))
}

func (s *Shell) printNotice(msg string) {
	fmt.Fprintln(s.out, styleNotice.Render(msg))
}

func (s *Shell) printError(err error) {
	fmt.Fprintln(s.out, styleError.Render("error:")+" "+err.Error())
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mindcanvas/internal/data"
	"mindcanvas/internal/model"
	"mindcanvas/internal/summarize"
)

func (s *Shell) runNode(ctx context.Context, cmd Command) error {
	mm, err := s.resolveMindmap("")
	if err != nil {
		return err
	}
	switch cmd.Operation {
	case "add":
		return s.nodeAdd(ctx, mm, cmd.Args)
	case "update", "edit":
		return s.nodeUpdate(ctx, mm, cmd.Args)
	case "move":
		return s.nodeMove(ctx, mm, cmd.Args)
	case "resize":
		return s.nodeResize(ctx, mm, cmd.Args)
	case "delete", "del":
		return s.nodeDelete(ctx, mm, cmd.Args)
	case "show":
		return s.nodeShow(mm, cmd.Args)
	case "find", "search":
		return s.nodeFind(mm, cmd.Args)
	case "sort":
		return s.nodeSort(ctx, mm, cmd.Args)
	case "summarize":
		return s.nodeSummarize(ctx, mm, cmd.Args)
	default:
		return fmt.Errorf("unknown node operation %q (try 'help node')", cmd.Operation)
	}
}

// nodeAdd creates a node. One argument makes a new root; with more, the first
// is the parent ("-" for an explicit root) and the rest are title and
// description.
func (s *Shell) nodeAdd(ctx context.Context, mm *model.Mindmap, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: node add [parent] <title> [description]")
	}
	parentID := ""
	title := args[0]
	description := ""
	if len(args) > 1 {
		if args[0] != "-" {
			parent, err := FindNode(mm, args[0])
			if err != nil {
				return err
			}
			parentID = parent.ID
		}
		title = args[1]
		if len(args) > 2 {
			description = strings.Join(args[2:], " ")
		}
	}
	node, found, err := s.mgr.AddNode(ctx, mm.ID, parentID, data.NodeContent{Title: title, Description: description})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("mindmap %q no longer exists", mm.Name)
	}
	s.printOK(fmt.Sprintf("added %q [%s] at (%.0f, %.0f)", node.Title, shortID(node.ID), node.X, node.Y))
	return nil
}

func (s *Shell) nodeUpdate(ctx context.Context, mm *model.Mindmap, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: node update <node> field:value...")
	}
	node, err := FindNode(mm, args[0])
	if err != nil {
		return err
	}
	var patch data.NodePatch
	for _, arg := range args[1:] {
		field, value, ok := splitPair(arg)
		if !ok {
			return fmt.Errorf("expected field:value, got %q", arg)
		}
		switch field {
		case "title":
			v := value
			patch.Title = &v
		case "description", "desc":
			v := value
			patch.Description = &v
		case "emoji":
			v := value
			patch.Emoji = &v
		case "color":
			v := value
			patch.Color = &v
		case "size":
			sc := model.SizeCategory(strings.ToLower(value))
			patch.Size = &sc
		case "height":
			h, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("height %q is not a number", value)
			}
			patch.Height = &h
		default:
			return fmt.Errorf("unknown field %q (want title, description, emoji, color, size or height)", field)
		}
	}
	updated, found, err := s.mgr.UpdateNode(ctx, mm.ID, node.ID, patch)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("node %q no longer exists", args[0])
	}
	s.printOK(fmt.Sprintf("updated %q (%.0f×%.0f)", updated.Title, updated.Width, updated.Height))
	return nil
}

func (s *Shell) nodeMove(ctx context.Context, mm *model.Mindmap, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: node move <node> <x> <y>")
	}
	node, err := FindNode(mm, args[0])
	if err != nil {
		return err
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("x %q is not a number", args[1])
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("y %q is not a number", args[2])
	}
	found, err := s.mgr.MoveNode(ctx, mm.ID, node.ID, x, y)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("node %q no longer exists", args[0])
	}
	s.printOK(fmt.Sprintf("moved %q to (%.1f, %.1f)", node.Title, x, y))
	return nil
}

func (s *Shell) nodeResize(ctx context.Context, mm *model.Mindmap, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: node resize <node> <mini|standard|massive>")
	}
	node, err := FindNode(mm, args[0])
	if err != nil {
		return err
	}
	size, err := model.ParseSizeCategory(args[1])
	if err != nil {
		return err
	}
	resized, found, err := s.mgr.ResizeNode(ctx, mm.ID, node.ID, size)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("node %q no longer exists", args[0])
	}
	s.printOK(fmt.Sprintf("resized %q to %s (%.0f×%.0f)", resized.Title, resized.Size, resized.Width, resized.Height))
	return nil
}

func (s *Shell) nodeDelete(ctx context.Context, mm *model.Mindmap, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: node delete <node>")
	}
	node, err := FindNode(mm, args[0])
	if err != nil {
		return err
	}
	subtree := len(node.ChildIDs)
	found, err := s.mgr.DeleteNode(ctx, mm.ID, node.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("node %q no longer exists", args[0])
	}
	if subtree > 0 {
		s.printOK(fmt.Sprintf("deleted %q and its subtree", node.Title))
	} else {
		s.printOK(fmt.Sprintf("deleted %q", node.Title))
	}
	return nil
}

func (s *Shell) nodeShow(mm *model.Mindmap, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: node show <node>")
	}
	node, err := FindNode(mm, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, renderNodeDetail(mm, node))
	return nil
}

func (s *Shell) nodeFind(mm *model.Mindmap, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: node find <query>")
	}
	query := strings.Join(args, " ")
	results, found := s.mgr.FindNodes(mm.ID, query)
	if !found {
		return fmt.Errorf("mindmap %q no longer exists", mm.Name)
	}
	fmt.Fprintln(s.out, renderFindResults(query, results))
	return nil
}

// nodeSort orders children by title. With no node it sorts the roots;
// --recursive descends the whole subtree.
func (s *Shell) nodeSort(ctx context.Context, mm *model.Mindmap, args []string) error {
	ref := ""
	recursive := false
	for _, arg := range args {
		switch arg {
		case "--recursive", "-r":
			recursive = true
		default:
			if ref != "" {
				return fmt.Errorf("unexpected argument %q (usage: node sort [node] [--recursive])", arg)
			}
			ref = arg
		}
	}
	nodeID := ""
	target := "root nodes"
	if ref != "" {
		node, err := FindNode(mm, ref)
		if err != nil {
			return err
		}
		nodeID = node.ID
		target = fmt.Sprintf("children of %q", node.Title)
	}
	found, err := s.mgr.SortChildren(ctx, mm.ID, nodeID, recursive)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("nothing to sort")
	}
	s.printOK(fmt.Sprintf("sorted %s", target))
	return nil
}

// nodeSummarize fetches a summary of the node's content and prints it. The
// node itself is never changed; applying the text takes an explicit update.
func (s *Shell) nodeSummarize(ctx context.Context, mm *model.Mindmap, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: node summarize <node>")
	}
	if s.summarizer == nil || !s.summarizer.Enabled() {
		return fmt.Errorf("summarization is not configured (set summarize.endpoint)")
	}
	node, err := FindNode(mm, args[0])
	if err != nil {
		return err
	}
	summary, err := s.summarizer.Summarize(ctx, node.Description)
	if err != nil {
		if errors.Is(err, summarize.ErrEmptyContent) {
			return fmt.Errorf("node %q has no description to summarize", node.Title)
		}
		return fmt.Errorf("summarization failed: %w", err)
	}
	fmt.Fprintln(s.out, styleSummaryBox.Render(summary))
	s.printNotice(fmt.Sprintf("not stored; apply with: node update %s description:\"...\"", shortID(node.ID)))
	return nil
}

package shell

import (
	"context"
	"fmt"

	"mindcanvas/internal/data"
)

func (s *Shell) runMindmap(ctx context.Context, cmd Command) error {
	switch cmd.Operation {
	case "new", "create":
		return s.mindmapNew(ctx, cmd.Args)
	case "list", "ls":
		fmt.Fprintln(s.out, RenderMindmapList(s.mgr.Mindmaps(), s.selectedID()))
		return nil
	case "select":
		return s.mindmapSelect(cmd.Args)
	case "show", "view":
		return s.mindmapShow(cmd.Args)
	case "edit", "update":
		return s.mindmapEdit(ctx, cmd.Args)
	case "delete", "del":
		return s.mindmapDelete(ctx, cmd.Args)
	case "export":
		return s.mindmapExport(cmd.Args)
	case "import":
		return s.mindmapImport(ctx, cmd.Args)
	default:
		return fmt.Errorf("unknown mindmap operation %q (try 'help mindmap')", cmd.Operation)
	}
}

func (s *Shell) mindmapNew(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mindmap new <name> [category]")
	}
	category := ""
	if len(args) > 1 {
		category = args[1]
	}
	mm, err := s.mgr.CreateMindmap(ctx, args[0], category)
	if err != nil {
		return err
	}
	s.setSelected(mm.ID)
	s.printOK(fmt.Sprintf("created %q [%s] and selected it", mm.Name, shortID(mm.ID)))
	return nil
}

func (s *Shell) mindmapSelect(args []string) error {
	if len(args) == 0 {
		s.setSelected("")
		s.printOK("selection cleared")
		return nil
	}
	mm, err := s.resolveMindmap(args[0])
	if err != nil {
		return err
	}
	s.setSelected(mm.ID)
	s.printOK(fmt.Sprintf("selected %q (%d nodes)", mm.Name, len(mm.Data.Nodes)))
	return nil
}

func (s *Shell) mindmapShow(args []string) error {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	mm, err := s.resolveMindmap(ref)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, RenderTree(mm))
	return nil
}

// mindmapEdit applies field:value pairs to a mindmap. A bare argument is the
// mindmap reference; without one the current selection is edited.
func (s *Shell) mindmapEdit(ctx context.Context, args []string) error {
	ref := ""
	var patch data.MindmapPatch
	pairs := 0
	for _, arg := range args {
		field, value, ok := splitPair(arg)
		if !ok {
			if ref != "" {
				return fmt.Errorf("unexpected argument %q (usage: mindmap edit [name|id] field:value...)", arg)
			}
			ref = arg
			continue
		}
		pairs++
		switch field {
		case "name":
			v := value
			patch.Name = &v
		case "category", "cat":
			v := value
			patch.Category = &v
		default:
			return fmt.Errorf("unknown field %q (want name or category)", field)
		}
	}
	if pairs == 0 {
		return fmt.Errorf("nothing to change (usage: mindmap edit [name|id] field:value...)")
	}
	mm, err := s.resolveMindmap(ref)
	if err != nil {
		return err
	}
	updated, found, err := s.mgr.UpdateMindmap(ctx, mm.ID, patch)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("mindmap %q no longer exists", mm.Name)
	}
	s.printOK(fmt.Sprintf("updated %q", updated.Name))
	return nil
}

func (s *Shell) mindmapDelete(ctx context.Context, args []string) error {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	mm, err := s.resolveMindmap(ref)
	if err != nil {
		return err
	}
	found, err := s.mgr.DeleteMindmap(ctx, mm.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("mindmap %q no longer exists", mm.Name)
	}
	if s.selectedID() == mm.ID {
		s.setSelected("")
	}
	s.printOK(fmt.Sprintf("deleted %q", mm.Name))
	return nil
}

// mindmapExport writes the selected mindmap to a file. With no path the file
// name derives from the mindmap name.
func (s *Shell) mindmapExport(args []string) error {
	mm, err := s.resolveMindmap("")
	if err != nil {
		return err
	}
	format, path := "json", ""
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		path = args[1]
	}
	written, err := s.mgr.ExportMindmap(mm.ID, path, format)
	if err != nil {
		return err
	}
	s.printOK(fmt.Sprintf("exported %q to %s", mm.Name, written))
	return nil
}

func (s *Shell) mindmapImport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mindmap import <path> [format]")
	}
	format := ""
	if len(args) > 1 {
		format = args[1]
	}
	mm, err := s.mgr.ImportMindmap(ctx, args[0], format)
	if err != nil {
		return err
	}
	s.setSelected(mm.ID)
	s.printOK(fmt.Sprintf("imported %q [%s] with %d nodes", mm.Name, shortID(mm.ID), len(mm.Data.Nodes)))
	return nil
}

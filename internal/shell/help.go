package shell

import "fmt"

// CommandHelp is the help entry for one scope/operation pair.
type CommandHelp struct {
	Scope     string
	Operation string
	ShortDesc string
	LongDesc  string
	Syntax    string
	Arguments []string
	Options   []string
	Examples  []string
}

// printHelp routes "help", "help <scope>", and "help <scope> <operation>".
func (s *Shell) printHelp(args []string) {
	switch len(args) {
	case 0:
		s.showGeneralHelp()
	case 1:
		s.showScopeHelp(args[0])
	default:
		s.showOperationHelp(args[0], args[1])
	}
}

func (s *Shell) showGeneralHelp() {
	fmt.Fprintln(s.out, "Command syntax: <scope> <operation> [arguments]")
	fmt.Fprintln(s.out, "Nodes are addressed by id, unique id prefix, or exact title.")
	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			fmt.Fprintf(s.out, "\n%s\n", styleHeader.Render(cmd.Scope))
			currentScope = cmd.Scope
		}
		fmt.Fprintf(s.out, "  %-12s %s\n", cmd.Operation, cmd.ShortDesc)
	}
	fmt.Fprintln(s.out, "\nUse 'help <scope> <operation>' for details, 'exit' to quit.")
}

func (s *Shell) showScopeHelp(scope string) {
	found := false
	for _, cmd := range commandHelps {
		if cmd.Scope != scope {
			continue
		}
		if !found {
			fmt.Fprintf(s.out, "%s\n", styleHeader.Render(scope))
			found = true
		}
		fmt.Fprintf(s.out, "  %-12s %s\n", cmd.Operation, cmd.ShortDesc)
	}
	if !found {
		fmt.Fprintf(s.out, "no such scope %q (want mindmap, node, canvas or system)\n", scope)
	}
}

func (s *Shell) showOperationHelp(scope, operation string) {
	for _, cmd := range commandHelps {
		if cmd.Scope != scope || cmd.Operation != operation {
			continue
		}
		fmt.Fprintf(s.out, "%s\n", styleHeader.Render(scope+" "+operation))
		fmt.Fprintf(s.out, "%s\n", cmd.LongDesc)
		fmt.Fprintf(s.out, "Syntax: %s\n", cmd.Syntax)
		if len(cmd.Arguments) > 0 {
			fmt.Fprintln(s.out, "Arguments:")
			for _, arg := range cmd.Arguments {
				fmt.Fprintf(s.out, "  %s\n", arg)
			}
		}
		if len(cmd.Options) > 0 {
			fmt.Fprintln(s.out, "Options:")
			for _, opt := range cmd.Options {
				fmt.Fprintf(s.out, "  %s\n", opt)
			}
		}
		if len(cmd.Examples) > 0 {
			fmt.Fprintln(s.out, "Examples:")
			for _, ex := range cmd.Examples {
				fmt.Fprintf(s.out, "  %s\n", ex)
			}
		}
		return
	}
	fmt.Fprintf(s.out, "no help found for %s %s\n", scope, operation)
}

// commandHelps lists every command the shell understands, grouped by scope.
var commandHelps = []CommandHelp{
	{
		Scope:     "mindmap",
		Operation: "new",
		ShortDesc: "Create a mindmap and select it",
		LongDesc:  "Creates an empty mindmap with the given name and optional category, then selects it.",
		Syntax:    "mindmap new <name> [category]",
		Arguments: []string{"name: display name, quote it to include spaces", "category: (optional) grouping label"},
		Examples:  []string{`mindmap new Physics science`, `mindmap new "Study Plan"`},
	},
	{
		Scope:     "mindmap",
		Operation: "list",
		ShortDesc: "List all mindmaps",
		LongDesc:  "Shows every mindmap with its category, node count, and last update. The selected one is marked.",
		Syntax:    "mindmap list",
		Examples:  []string{"mindmap list"},
	},
	{
		Scope:     "mindmap",
		Operation: "select",
		ShortDesc: "Select a mindmap (or clear the selection)",
		LongDesc:  "Selects the mindmap node and canvas commands operate on. Without an argument the selection is cleared.",
		Syntax:    "mindmap select [name|id]",
		Arguments: []string{"name|id: mindmap name (case-insensitive) or id prefix"},
		Examples:  []string{"mindmap select Physics", "mindmap select"},
	},
	{
		Scope:     "mindmap",
		Operation: "show",
		ShortDesc: "Show a mindmap as a tree",
		LongDesc:  "Draws the node tree in root order. Defaults to the selected mindmap.",
		Syntax:    "mindmap show [name|id]",
		Examples:  []string{"mindmap show", "mindmap show Physics"},
	},
	{
		Scope:     "mindmap",
		Operation: "edit",
		ShortDesc: "Change name or category",
		LongDesc:  "Applies field:value changes to a mindmap. Defaults to the selected one. An empty value clears the field.",
		Syntax:    "mindmap edit [name|id] field:value...",
		Arguments: []string{"field: name or category"},
		Examples:  []string{`mindmap edit name:"Physics II"`, "mindmap edit Physics category:archive"},
	},
	{
		Scope:     "mindmap",
		Operation: "delete",
		ShortDesc: "Delete a mindmap",
		LongDesc:  "Deletes a mindmap and every node in it. Defaults to the selected one.",
		Syntax:    "mindmap delete [name|id]",
		Examples:  []string{"mindmap delete", "mindmap delete Physics"},
	},
	{
		Scope:     "mindmap",
		Operation: "export",
		ShortDesc: "Export the selected mindmap to a file",
		LongDesc:  "Writes the selected mindmap as json, yaml, or xml. Without a path the file name derives from the mindmap name.",
		Syntax:    "mindmap export [format] [path]",
		Arguments: []string{"format: json (default), yaml, or xml", "path: (optional) output file"},
		Examples:  []string{"mindmap export", "mindmap export yaml backups/physics.yaml"},
	},
	{
		Scope:     "mindmap",
		Operation: "import",
		ShortDesc: "Import a mindmap from a file",
		LongDesc:  "Reads a mindmap file, repairs its structure, gives it a fresh id if needed, and selects it. The format is inferred from the extension when omitted.",
		Syntax:    "mindmap import <path> [format]",
		Arguments: []string{"path: file to read", "format: (optional) json, yaml, or xml"},
		Examples:  []string{"mindmap import physics.json", "mindmap import notes.txt yaml"},
	},
	{
		Scope:     "node",
		Operation: "add",
		ShortDesc: "Add a node",
		LongDesc:  "Adds a node to the selected mindmap. With one argument it becomes a new root; with more, the first names the parent ('-' forces a root). Position follows the layout rules.",
		Syntax:    "node add [parent|-] <title> [description]",
		Arguments: []string{"parent: node reference, or '-' for a root", "title: node title", "description: (optional) body text"},
		Examples:  []string{`node add Mechanics`, `node add Mechanics "Newton's Laws"`, `node add - Thermodynamics "heat and entropy"`},
	},
	{
		Scope:     "node",
		Operation: "update",
		ShortDesc: "Update node fields",
		LongDesc:  "Applies field:value changes. Content changes re-derive the height; an explicit height is clamped to the valid range. Colors come from the fixed palette.",
		Syntax:    "node update <node> field:value...",
		Arguments: []string{"node: node reference", "field: title, description, emoji, color, size, or height"},
		Examples:  []string{`node update Mechanics description:"force and motion"`, "node update 3fe2 color:#BFDBFE size:massive"},
	},
	{
		Scope:     "node",
		Operation: "move",
		ShortDesc: "Move a node to logical coordinates",
		LongDesc:  "Sets the node's position on the logical canvas. No bounds are enforced.",
		Syntax:    "node move <node> <x> <y>",
		Examples:  []string{"node move Mechanics 4800 520"},
	},
	{
		Scope:     "node",
		Operation: "resize",
		ShortDesc: "Change a node's size category",
		LongDesc:  "Switches the card between mini, standard, and massive; width follows the category and height is re-derived from the content.",
		Syntax:    "node resize <node> <mini|standard|massive>",
		Examples:  []string{"node resize Mechanics massive"},
	},
	{
		Scope:     "node",
		Operation: "delete",
		ShortDesc: "Delete a node and its subtree",
		LongDesc:  "Removes the node and every descendant, and unlinks it from its parent or the root list.",
		Syntax:    "node delete <node>",
		Examples:  []string{"node delete Mechanics"},
	},
	{
		Scope:     "node",
		Operation: "show",
		ShortDesc: "Show every field of a node",
		LongDesc:  "Prints the node's full record, including geometry, parent, and child count.",
		Syntax:    "node show <node>",
		Examples:  []string{"node show Mechanics"},
	},
	{
		Scope:     "node",
		Operation: "find",
		ShortDesc: "Search titles and descriptions",
		LongDesc:  "Case-insensitive substring search over the selected mindmap, results in tree order.",
		Syntax:    "node find <query>",
		Examples:  []string{"node find newton"},
	},
	{
		Scope:     "node",
		Operation: "sort",
		ShortDesc: "Sort children alphabetically",
		LongDesc:  "Orders a node's children by title. Without a node the roots are sorted. Positions are untouched.",
		Syntax:    "node sort [node] [--recursive]",
		Options:   []string{"--recursive, -r: sort every level below as well"},
		Examples:  []string{"node sort", "node sort Mechanics --recursive"},
	},
	{
		Scope:     "node",
		Operation: "summarize",
		ShortDesc: "Summarize a node's description",
		LongDesc:  "Sends the node's description to the configured summarization endpoint and prints the result. The node is not changed; apply the text with node update.",
		Syntax:    "node summarize <node>",
		Examples:  []string{"node summarize Mechanics"},
	},
	{
		Scope:     "canvas",
		Operation: "zoom",
		ShortDesc: "Zoom in, out, or to a scale",
		LongDesc:  "Zooms by one wheel notch (in/out) or to an absolute scale, clamped to [0.2, 3.0]. An anchor keeps that screen point fixed; without one the viewport center holds.",
		Syntax:    "canvas zoom <in|out|scale> [x y]",
		Examples:  []string{"canvas zoom in", "canvas zoom 2.0 640 400"},
	},
	{
		Scope:     "canvas",
		Operation: "pan",
		ShortDesc: "Shift the view",
		LongDesc:  "Moves the view by a screen-space delta.",
		Syntax:    "canvas pan <dx> <dy>",
		Examples:  []string{"canvas pan 120 -80"},
	},
	{
		Scope:     "canvas",
		Operation: "reset",
		ShortDesc: "Reset the view",
		LongDesc:  "Restores scale 1 with the selected mindmap's first root centered in the viewport.",
		Syntax:    "canvas reset",
		Examples:  []string{"canvas reset"},
	},
	{
		Scope:     "canvas",
		Operation: "view",
		ShortDesc: "Show the view transform and node layout",
		LongDesc:  "Prints the camera state plus each node's on-screen rectangle and the connector count.",
		Syntax:    "canvas view",
		Examples:  []string{"canvas view"},
	},
	{
		Scope:     "canvas",
		Operation: "press",
		ShortDesc: "Start a gesture at a screen point",
		LongDesc:  "Press over a node starts a drag, over empty background starts a pan. Coordinates are screen pixels.",
		Syntax:    "canvas press <x> <y>",
		Examples:  []string{"canvas press 640 400"},
	},
	{
		Scope:     "canvas",
		Operation: "move",
		ShortDesc: "Advance the active gesture",
		LongDesc:  "While panning the camera follows; while dragging the would-be drop position is shown.",
		Syntax:    "canvas move <x> <y>",
		Examples:  []string{"canvas move 700 380"},
	},
	{
		Scope:     "canvas",
		Operation: "release",
		ShortDesc: "End the gesture",
		LongDesc:  "Ends a pan, or commits a node drag through the engine at the release point.",
		Syntax:    "canvas release <x> <y>",
		Examples:  []string{"canvas release 700 380"},
	},
	{
		Scope:     "system",
		Operation: "help",
		ShortDesc: "Show help",
		LongDesc:  "Shows the command list, one scope, or one operation. Bare 'help' works too.",
		Syntax:    "system help [scope] [operation]",
		Examples:  []string{"help", "help node", "help node sort"},
	},
	{
		Scope:     "system",
		Operation: "exit",
		ShortDesc: "Exit the shell",
		LongDesc:  "Leaves the shell. All changes are already saved; there is nothing to flush. 'quit' and bare 'exit' do the same.",
		Syntax:    "system exit",
		Examples:  []string{"exit", "system exit"},
	},
}

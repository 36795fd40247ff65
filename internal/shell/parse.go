package shell

import "strings"

// Command is one parsed input line: a scope, an operation within that scope,
// and the remaining arguments.
type Command struct {
	Scope     string
	Operation string
	Args      []string
}

// ParseArgs splits a line into arguments, honoring double quotes so titles
// and descriptions can carry spaces. Quotes themselves are stripped.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if inQuotes {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// parseCommand shapes split arguments into a Command. Scope and operation are
// lower-cased; single-word commands (help, exit) come back without an
// operation.
func parseCommand(args []string) Command {
	cmd := Command{Scope: strings.ToLower(args[0])}
	if len(args) > 1 {
		cmd.Operation = strings.ToLower(args[1])
		cmd.Args = args[2:]
	}
	return cmd
}

// splitPair splits a "field:value" argument. ok is false when the argument
// carries no field prefix. An empty value is valid and clears the field.
func splitPair(arg string) (field, value string, ok bool) {
	i := strings.Index(arg, ":")
	if i <= 0 {
		return "", "", false
	}
	return strings.ToLower(arg[:i]), arg[i+1:], true
}

package tags

import "strings"

// knownVerbs are the command verbs the format defines. Parsing keeps
// unknown verbs so the facade can report them as unhandled.
var knownVerbs = map[string]struct{}{
	"list": {}, "get": {}, "create": {}, "update": {},
	"delete": {}, "run": {}, "execute": {}, "search": {},
}

// KnownVerb reports whether the command verb is part of the format.
func (c Command) KnownVerb() bool {
	_, ok := knownVerbs[c.Command]
	return ok
}

// parseCommand builds a command intent from a <tdz> payload: the first
// two fields are verb and target, the rest split into positional args
// and key=value options.
func parseCommand(parts []string, offset int) Command {
	cmd := Command{
		Command: strings.ToLower(parts[0]),
		Target:  strings.ToLower(parts[1]),
		Options: map[string]string{},
		Offset:  offset,
	}
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		if k, v, ok := strings.Cut(part, "="); ok {
			cmd.Options[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		} else {
			cmd.Args = append(cmd.Args, part)
		}
	}
	return cmd
}

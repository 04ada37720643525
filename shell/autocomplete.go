package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter completes command names, options and option values.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"hand":    {Options: []string{"-dealt", "-failed", "-split", "-first"}},
	"shoe":    {Options: []string{"-threads"}},
	"removal": {Options: []string{"-threads"}},
	"set":     {Args: []string{"format", "threads"}},
}

var commandNames = []string{
	"help", "deck", "full", "remove", "hand", "best", "actions", "shoe",
	"removal", "chart", "set", "s", "exit",
}

var boolValues = []string{"true", "false"}
var formatValues = []string{"text", "yaml", "json"}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case strings.HasPrefix(lastCompleteField, "-") && cmdName == "hand":
			completions = boolValues
		case cmdName == "set" && lastCompleteField == "format":
			completions = formatValues
		case cmdName == "help" && len(fields) <= 2:
			completions = helpTopics()
		}

		if completions == nil {
			if metadata, ok := commandMetadata[cmdName]; ok {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

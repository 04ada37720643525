package shell

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/samber/lo"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usageTopic(topic string) (string, error) {
	dat, err := fs.ReadFile(helptext, "helptext/"+topic+".txt")
	if err != nil {
		return "", fmt.Errorf("there is no help text for the topic %s", topic)
	}
	return string(dat), nil
}

func helpTopics() []string {
	entries, _ := fs.ReadDir(helptext, "helptext")
	return lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
		name := strings.TrimSuffix(e.Name(), ".txt")
		return name, name != "usage"
	})
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		out, err := usageTopic("usage")
		if err != nil {
			return nil, err
		}
		return msg(out), nil
	}
	out, err := usageTopic(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

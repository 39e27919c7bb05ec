package chat

import "strings"

// Command names understood by the router.
const (
	CmdStatus             = "/status"
	CmdHelp               = "/help"
	CmdHistory            = "/history"
	CmdCancel             = "/cancel"
	CmdDeleteHistoryAll   = "/delete-history-all"
	CmdForgetMe           = "/forget-me"
	CmdDeleteHistoryVideo = "/delete-history-videoid"
	CmdClearChat          = "/clear-chat"
	CmdPrivacy            = "/privacy"
)

// Command is a parsed slash command.
type Command struct {
	Name string
	Args string
}

// IsCommand reports whether text should be routed as a command.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// ParseCommand splits text into a lower-cased command name and the
// whitespace-normalised remainder.
func ParseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{
		Name: strings.ToLower(fields[0]),
		Args: strings.Join(fields[1:], " "),
	}
}

// FirstArg returns the first argument token, or "".
func (c Command) FirstArg() string {
	if i := strings.IndexByte(c.Args, ' '); i >= 0 {
		return c.Args[:i]
	}
	return c.Args
}

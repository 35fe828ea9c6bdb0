package session

import "path"

// Command identifiers exposed to the host's key dispatch. The host
// maps keys to these and calls the corresponding Engine method; the
// ids also feed the continue-command allow-list.
const (
	CmdEdit            = "edit"
	CmdStart           = "start"
	CmdNext            = "next"
	CmdPrevious        = "previous"
	CmdFirst           = "first"
	CmdLast            = "last"
	CmdPageUp          = "page-up"
	CmdPageDown        = "page-down"
	CmdInsert          = "insert-selected-and-continue"
	CmdFinish          = "insert-selected-and-finish"
	CmdCompleteOrCycle = "complete-or-cycle"
	CmdQuit            = "quit"
	CmdReset           = "reset"
	CmdShowDoc         = "show-documentation"
	CmdShowLocation    = "show-location"
)

// DefaultContinueCommands lists the commands that keep a session
// alive even when the field empties.
var DefaultContinueCommands = []string{
	CmdStart,
	CmdNext,
	CmdPrevious,
	CmdFirst,
	CmdLast,
	CmdPageUp,
	CmdPageDown,
	CmdInsert,
	CmdReset,
	"scroll-*",
}

// matchesCommand reports whether cmd matches any entry: literal ids
// compare directly, entries with glob metacharacters use path.Match.
func matchesCommand(patterns []string, cmd string) bool {
	for _, p := range patterns {
		if p == cmd {
			return true
		}
		if ok, err := path.Match(p, cmd); err == nil && ok {
			return true
		}
	}
	return false
}

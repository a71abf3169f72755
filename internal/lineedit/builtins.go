package lineedit

import "fmt"

// runLocalBuiltin handles the handful of commands the terminal answers
// itself rather than routing through the core command registry: exiting
// the session, clearing the screen, and the hist* family that operate
// directly on this Editor's History rather than any CVar or Buffer
// state. It reports whether name was recognized.
func (e *Editor) runLocalBuiltin(name string, args []string) bool {
	switch name {
	case "exit", "quit":
		e.quit = true
		return true
	case "clear":
		if e.Term != nil {
			e.Term.ClearScreen()
		}
		return true
	case "histView":
		for i, line := range e.History.All() {
			e.printLine(fmt.Sprintf("%4d  %s", i+1, line))
		}
		return true
	case "histClear":
		e.History.Clear()
		return true
	case "histSave":
		path := defaultHistoryPath
		if len(args) > 0 {
			path = args[0]
		}
		if e.Files == nil {
			e.printLine("histSave: no file I/O configured")
			return true
		}
		if err := e.History.Save(e.Files, path); err != nil {
			e.printLine(err.Error())
		}
		return true
	case "histLoad":
		path := defaultHistoryPath
		if len(args) > 0 {
			path = args[0]
		}
		if e.Files == nil {
			e.printLine("histLoad: no file I/O configured")
			return true
		}
		if err := e.History.Load(e.Files, path); err != nil {
			e.printLine(err.Error())
		}
		return true
	case "histGrep":
		if len(args) == 0 {
			e.printLine("histGrep: usage: histGrep SUBSTRING")
			return true
		}
		for _, line := range e.History.Grep(args[0]) {
			e.printLine(line)
		}
		return true
	case "histAutosave":
		if e.Files == nil {
			e.printLine("histAutosave: no file I/O configured")
			return true
		}
		path := e.autosavePath()
		if err := e.History.Save(e.Files, path); err != nil {
			e.printLine(err.Error())
			return true
		}
		e.printLine("history autosaved to " + path)
		return true
	}
	return false
}

const defaultHistoryPath = ".cvarshell_history"

// autosavePath names this run's autosave file with the short form of its
// session identifier, so two shells running against the same working
// directory never overwrite each other's autosaved history.
func (e *Editor) autosavePath() string {
	id := e.sessionID
	if len(id) > 8 {
		id = id[:8]
	}
	return defaultHistoryPath + "-" + id
}

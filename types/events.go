package types

// Event class labels shared by storage, detection, and the web UI.
const (
	EventClassExec    = "exec"
	EventClassExit    = "exit"
	EventClassFork    = "fork"
	EventClassFile    = "file"
	EventClassUipc    = "uipc"
	EventClassSession = "session"
)

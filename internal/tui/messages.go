package tui

// stateChangedMsg asks for a redraw after the engine state moved.
type stateChangedMsg struct{}

type noticeMsg struct {
	text string
}

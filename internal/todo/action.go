package todo

// ActionType names an action kind.
type ActionType string

const (
	ActionLoadState   ActionType = "loadState"
	ActionAdd         ActionType = "add"
	ActionDelete      ActionType = "delete"
	ActionToggleDone  ActionType = "toggleDone"
	ActionDragAndDrop ActionType = "dragAndDrop"
	ActionShowError   ActionType = "showError"
	ActionCloseError  ActionType = "closeError"
)

// Action is one of the actions defined in this package. The set is closed.
type Action interface {
	Type() ActionType
	sealed()
}

// LoadState replaces the item list wholesale.
type LoadState struct {
	Items []Item
}

// Add prepends a new, not-done item.
type Add struct {
	Title   string
	Details string
}

// Delete removes the item at Index.
type Delete struct {
	Index int
}

// ToggleDone flips Done on the item at Index.
type ToggleDone struct {
	Index int
}

// Location is a position in the stored item list.
type Location struct {
	Index int
}

// DragAndDrop is the result of a drag gesture. A nil Destination means the
// drag was cancelled.
type DragAndDrop struct {
	Source      Location
	Destination *Location
}

// ShowError raises the error flag.
type ShowError struct {
	Reason string
}

// CloseError clears the error flag.
type CloseError struct{}

func (LoadState) Type() ActionType   { return ActionLoadState }
func (Add) Type() ActionType         { return ActionAdd }
func (Delete) Type() ActionType      { return ActionDelete }
func (ToggleDone) Type() ActionType  { return ActionToggleDone }
func (DragAndDrop) Type() ActionType { return ActionDragAndDrop }
func (ShowError) Type() ActionType   { return ActionShowError }
func (CloseError) Type() ActionType  { return ActionCloseError }

func (LoadState) sealed()   {}
func (Add) sealed()         {}
func (Delete) sealed()      {}
func (ToggleDone) sealed()  {}
func (DragAndDrop) sealed() {}
func (ShowError) sealed()   {}
func (CloseError) sealed()  {}

// Move builds a completed drag from one stored index to another.
func Move(from, to int) DragAndDrop {
	return DragAndDrop{Source: Location{Index: from}, Destination: &Location{Index: to}}
}

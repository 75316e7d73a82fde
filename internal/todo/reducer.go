package todo

import "fmt"

// Reducer applies actions to a state. The zero value uses NewID.
type Reducer struct {
	NewID IDFunc
}

// Reduce applies action to state using the default reducer.
func Reduce(state State, action Action) State {
	return Reducer{}.Reduce(state, action)
}

// Reduce returns the state that results from applying action to state. It
// never modifies state.Items. Index-based actions with an index out of range
// return state unchanged. Reduce panics on an unknown action.
func (r Reducer) Reduce(state State, action Action) State {
	switch a := action.(type) {
	case LoadState:
		state.Items = cloneItems(a.Items)
		return state

	case Add:
		newID := r.NewID
		if newID == nil {
			newID = NewID
		}
		items := make([]Item, 0, len(state.Items)+1)
		items = append(items, Item{ID: newID(), Title: a.Title, Details: a.Details})
		state.Items = append(items, state.Items...)
		return state

	case Delete:
		if !inRange(state.Items, a.Index) {
			return state
		}
		items := make([]Item, 0, len(state.Items)-1)
		items = append(items, state.Items[:a.Index]...)
		state.Items = append(items, state.Items[a.Index+1:]...)
		return state

	case ToggleDone:
		if !inRange(state.Items, a.Index) {
			return state
		}
		items := cloneItems(state.Items)
		items[a.Index].Done = !items[a.Index].Done
		state.Items = items
		return state

	case DragAndDrop:
		if a.Destination == nil {
			return state
		}
		src, dst := a.Source.Index, a.Destination.Index
		if !inRange(state.Items, src) || !inRange(state.Items, dst) {
			return state
		}
		items := cloneItems(state.Items)
		items[src], items[dst] = items[dst], items[src]
		state.Items = items
		return state

	case ShowError:
		state.Error = true
		state.ErrorReason = a.Reason
		return state

	case CloseError:
		state.Error = false
		state.ErrorReason = ""
		return state

	default:
		panic(fmt.Sprintf("todo: unknown action %T", action))
	}
}

func inRange(items []Item, i int) bool {
	return i >= 0 && i < len(items)
}

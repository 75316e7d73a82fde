package todo

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"testing"
	"time"
)

// seqIDs returns an IDFunc producing "id1", "id2", ...
func seqIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func items(ids ...string) []Item {
	out := make([]Item, len(ids))
	for i, id := range ids {
		out[i] = Item{ID: id, Title: id}
	}
	return out
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestAdd_PrependsNotDoneItems(t *testing.T) {
	r := Reducer{NewID: seqIDs()}
	state := State{}

	for n := 1; n <= 5; n++ {
		state = r.Reduce(state, Add{Title: fmt.Sprintf("t%d", n)})
		if len(state.Items) != n {
			t.Fatalf("after %d adds: expected %d items, got %d", n, n, len(state.Items))
		}
	}
	for _, it := range state.Items {
		if it.Done {
			t.Errorf("added item %q should not be done", it.ID)
		}
	}
}

func TestAdd_MostRecentFirst(t *testing.T) {
	r := Reducer{NewID: seqIDs()}
	state := r.Reduce(State{}, Add{Title: "A"})
	state = r.Reduce(state, Add{Title: "B", Details: "second"})

	if len(state.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(state.Items))
	}
	if state.Items[0].Title != "B" || state.Items[1].Title != "A" {
		t.Errorf("expected [B A], got [%s %s]", state.Items[0].Title, state.Items[1].Title)
	}
	if state.Items[0].Details != "second" {
		t.Errorf("expected details %q, got %q", "second", state.Items[0].Details)
	}
	if state.Items[0].ID != "id2" {
		t.Errorf("expected id2, got %q", state.Items[0].ID)
	}
}

func TestToggleDone_Involution(t *testing.T) {
	state := State{Items: items("1", "2", "3")}

	for i := range state.Items {
		once := Reduce(state, ToggleDone{Index: i})
		if once.Items[i].Done == state.Items[i].Done {
			t.Errorf("index %d: toggle did not flip done", i)
		}
		twice := Reduce(once, ToggleDone{Index: i})
		if !Equal(twice.Items, state.Items) {
			t.Errorf("index %d: toggling twice changed the list", i)
		}
	}
}

func TestToggleDone_Scenario(t *testing.T) {
	state := State{Items: items("1", "2")}

	state = Reduce(state, ToggleDone{Index: 0})

	want := []Item{{ID: "1", Title: "1", Done: true}, {ID: "2", Title: "2"}}
	if !Equal(state.Items, want) {
		t.Fatalf("expected %+v, got %+v", want, state.Items)
	}

	order := DisplayOrder(state.Items)
	if order[0].Item.ID != "2" || order[1].Item.ID != "1" {
		t.Errorf("expected display order [2 1], got [%s %s]", order[0].Item.ID, order[1].Item.ID)
	}
	if order[0].Index != 1 || order[1].Index != 0 {
		t.Errorf("expected stored indexes [1 0], got [%d %d]", order[0].Index, order[1].Index)
	}
}

func TestDelete_ShiftsFollowingItems(t *testing.T) {
	base := items("a", "b", "c", "d")

	for i := range base {
		state := Reduce(State{Items: base}, Delete{Index: i})
		if len(state.Items) != len(base)-1 {
			t.Fatalf("delete %d: expected %d items, got %d", i, len(base)-1, len(state.Items))
		}
		for j, it := range state.Items {
			src := j
			if j >= i {
				src = j + 1
			}
			if it != base[src] {
				t.Errorf("delete %d: position %d holds %q, want %q", i, j, it.ID, base[src].ID)
			}
		}
	}
}

func TestDragAndDrop_Swaps(t *testing.T) {
	state := Reduce(State{Items: items("A", "B")}, Move(0, 1))

	got := ids(state.Items)
	if got[0] != "B" || got[1] != "A" {
		t.Errorf("expected [B A], got %v", got)
	}
}

func TestDragAndDrop_PreservesMultiset(t *testing.T) {
	base := items("a", "b", "c", "d", "e")

	for src := range base {
		for dst := range base {
			state := Reduce(State{Items: base}, Move(src, dst))
			if len(state.Items) != len(base) {
				t.Fatalf("move %d->%d changed length", src, dst)
			}

			got := ids(state.Items)
			want := ids(base)
			sort.Strings(got)
			sort.Strings(want)
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("move %d->%d changed the set of items: %v", src, dst, ids(state.Items))
				}
			}

			moved := 0
			for i := range base {
				if state.Items[i] != base[i] {
					moved++
				}
			}
			if src != dst && moved != 2 {
				t.Errorf("move %d->%d: expected 2 positions to change, got %d", src, dst, moved)
			}
		}
	}
}

func TestDragAndDrop_CancelledIsNoop(t *testing.T) {
	base := State{Items: items("a", "b")}
	state := Reduce(base, DragAndDrop{Source: Location{Index: 0}})

	if !Equal(state.Items, base.Items) {
		t.Errorf("expected unchanged list, got %v", ids(state.Items))
	}
}

func TestIndexOutOfRange_Noop(t *testing.T) {
	base := State{Items: items("a", "b")}

	actions := []Action{
		Delete{Index: -1},
		Delete{Index: 2},
		ToggleDone{Index: 5},
		Move(0, 2),
		Move(-1, 0),
	}
	for _, a := range actions {
		state := Reduce(base, a)
		if !Equal(state.Items, base.Items) {
			t.Errorf("%T%+v: expected unchanged list, got %v", a, a, ids(state.Items))
		}
	}
}

func TestLoadState_Idempotent(t *testing.T) {
	loaded := items("x", "y")
	start := State{Items: items("a")}

	once := Reduce(start, LoadState{Items: loaded})
	twice := Reduce(once, LoadState{Items: loaded})

	if !Equal(once.Items, twice.Items) || once.Error != twice.Error {
		t.Errorf("loading twice differs from loading once: %v vs %v", ids(once.Items), ids(twice.Items))
	}
	if !Equal(once.Items, loaded) {
		t.Errorf("expected %v, got %v", ids(loaded), ids(once.Items))
	}
}

func TestLoadState_KeepsErrorFlag(t *testing.T) {
	start := State{Error: true, ErrorReason: "full"}
	state := Reduce(start, LoadState{Items: items("a")})
	if !state.Error || state.ErrorReason != "full" {
		t.Errorf("expected error flag to survive load, got %+v", state)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	list := []Item{
		{ID: "k1-abc", Title: "Buy milk", Details: "2 liters", Done: false},
		{ID: "k2-def", Title: "Call mom", Done: true},
	}

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed []Item
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	state := Reduce(State{}, LoadState{Items: parsed})
	if !Equal(state.Items, list) {
		t.Errorf("round trip mismatch: %+v", state.Items)
	}
}

func TestItemJSON_OmitsEmptyDetails(t *testing.T) {
	data, err := json.Marshal(Item{ID: "1", Title: "t"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"1","title":"t","done":false}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestErrorFlag(t *testing.T) {
	state := Reduce(State{}, ShowError{Reason: "quota exceeded"})
	if !state.Error || state.ErrorReason != "quota exceeded" {
		t.Fatalf("expected raised error, got %+v", state)
	}

	state = Reduce(state, Add{Title: "still raised"})
	if !state.Error {
		t.Error("error flag should stay raised across other actions")
	}

	state = Reduce(state, CloseError{})
	if state.Error || state.ErrorReason != "" {
		t.Errorf("expected cleared error, got %+v", state)
	}
}

func TestReduce_DoesNotModifyInput(t *testing.T) {
	base := items("a", "b", "c")
	snapshot := append([]Item(nil), base...)
	state := State{Items: base}

	Reduce(state, ToggleDone{Index: 1})
	Reduce(state, Move(0, 2))
	Reduce(state, Delete{Index: 0})
	Reduce(state, Add{Title: "n"})

	if !Equal(base, snapshot) {
		t.Errorf("input slice was modified: %v", ids(base))
	}
}

func TestReduce_UnknownActionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil action")
		}
	}()
	Reduce(State{}, nil)
}

func TestNewID_Format(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]+-[0-9a-z]+$`)

	at := time.UnixMilli(1700000000000)
	id := newIDAt(at)
	if !re.MatchString(id) {
		t.Fatalf("unexpected id format: %q", id)
	}
	if prefix := "loyw3v28-"; id[:len(prefix)] != prefix {
		t.Errorf("expected timestamp prefix %q, got %q", prefix, id)
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

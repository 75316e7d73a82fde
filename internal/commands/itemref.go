package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todolist/internal/todo"
)

// ErrItemRefRequired indicates no item number was provided.
var ErrItemRefRequired = errors.New("item number required")

// ParseItemRef parses a display number as printed by list.
func ParseItemRef(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, ErrItemRefRequired
	}
	if !isAllDigits(arg) {
		return 0, fmt.Errorf("invalid item number: %s", arg)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid item number: %s", arg)
	}
	return n, nil
}

// ResolveItem maps display number num to the stored index of its item.
func ResolveItem(items []todo.Item, num int) (int, error) {
	entries := todo.DisplayOrder(items)
	if num < 1 || num > len(entries) {
		return 0, fmt.Errorf("item number out of range: %d", num)
	}
	return entries[num-1].Index, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Package history provides a linear undo/redo log of reversible commands.
package history

// Command is a reversible edit. Redo applies it (including the first time),
// Undo reverts it. A command must restore identical state across any number
// of Undo/Redo pairs.
type Command interface {
	Redo() error
	Undo() error
	Label() string
}

// Stack is a linear command history with a cursor. Commands before the cursor
// are applied; commands at or after it have been undone.
type Stack struct {
	commands []Command
	cursor   int
}

// New creates an empty stack
func New() *Stack {
	return &Stack{}
}

// Push applies c and appends it after the cursor, discarding any undone commands.
// If c fails to apply the stack is left unchanged.
func (s *Stack) Push(c Command) error {
	if err := c.Redo(); err != nil {
		return err
	}
	s.commands = append(s.commands[:s.cursor], c)
	s.cursor = len(s.commands)
	return nil
}

// Undo reverts the command before the cursor. It reports false when there is nothing to undo.
func (s *Stack) Undo() (bool, error) {
	if s.cursor == 0 {
		return false, nil
	}
	if err := s.commands[s.cursor-1].Undo(); err != nil {
		return false, err
	}
	s.cursor--
	return true, nil
}

// Redo reapplies the command at the cursor. It reports false when there is nothing to redo.
func (s *Stack) Redo() (bool, error) {
	if s.cursor == len(s.commands) {
		return false, nil
	}
	if err := s.commands[s.cursor].Redo(); err != nil {
		return false, err
	}
	s.cursor++
	return true, nil
}

func (s *Stack) Len() int      { return len(s.commands) }
func (s *Stack) Cursor() int   { return s.cursor }
func (s *Stack) CanUndo() bool { return s.cursor > 0 }
func (s *Stack) CanRedo() bool { return s.cursor < len(s.commands) }

// UndoLabel names the command Undo would revert, or ""
func (s *Stack) UndoLabel() string {
	if !s.CanUndo() {
		return ""
	}
	return s.commands[s.cursor-1].Label()
}

// RedoLabel names the command Redo would apply, or ""
func (s *Stack) RedoLabel() string {
	if !s.CanRedo() {
		return ""
	}
	return s.commands[s.cursor].Label()
}

// Labels lists every command label in order, applied and undone
func (s *Stack) Labels() []string {
	labels := make([]string, len(s.commands))
	for i, c := range s.commands {
		labels[i] = c.Label()
	}
	return labels
}

// Clear drops the whole history without touching any state
func (s *Stack) Clear() {
	s.commands = nil
	s.cursor = 0
}

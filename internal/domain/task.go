package domain

import "strings"

type Task struct {
	ID        string
	Text      string
	Completed bool
}

func NewTask(id, text string) (Task, error) {
	id = strings.TrimSpace(id)
	text = strings.TrimSpace(text)
	if id == "" {
		return Task{}, validationErr(ErrInvalidID)
	}
	if text == "" {
		return Task{}, validationErr(ErrInvalidText)
	}
	return Task{ID: id, Text: text}, nil
}

func (t *Task) Toggle() {
	t.Completed = !t.Completed
}

package commands

import (
	"context"
	"strings"

	"github.com/mfenderov/chrono/internal/event"
)

func (e *Env) addNote(ctx context.Context, ref string, args []string) (string, error) {
	n := event.NewNote(strings.Join(args, " "), e.now())
	if err := e.Project.AddNote(n); err != nil {
		return ref, err
	}
	return ref, nil
}

func (e *Env) listNotes(ctx context.Context, ref string, args []string) (string, error) {
	e.println(e.Styles.Title.Render("Notes:"))
	for i, n := range e.Project.Notes {
		id := n.ID
		if len(id) > 8 {
			id = id[:8]
		}
		e.printf("%d.: %s %s\n", i+1, n.Text, e.Styles.Dim.Render("("+id+")"))
	}
	return ref, nil
}

func (e *Env) deleteNote(ctx context.Context, ref string, args []string) (string, error) {
	return ref, e.Project.RemoveNote(strings.Join(args, " "))
}

func (e *Env) deleteNoteID(ctx context.Context, ref string, args []string) (string, error) {
	return ref, e.Project.RemoveNoteByID(args[0])
}

func (e *Env) deleteNotes(ctx context.Context, ref string, args []string) (string, error) {
	n := e.Project.ClearNotes()
	e.printf("Deleted %d notes\n", n)
	return ref, nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/storage"
)

func (e *Env) listCommands(ctx context.Context, ref string, args []string) (string, error) {
	e.println(strings.Join(e.registry.Names(), ", "))
	return ref, nil
}

func (e *Env) listAliases(ctx context.Context, ref string, args []string) (string, error) {
	names := e.Project.AliasNames()
	if len(names) == 0 {
		e.println(e.Styles.Dim.Render("no aliases"))
		return ref, nil
	}
	e.println(strings.Join(names, ", "))
	return ref, nil
}

func (e *Env) help(ctx context.Context, ref string, args []string) (string, error) {
	name := strings.ToLower(args[0])
	if a, ok := e.Project.Alias(name); ok {
		e.println("calls : " + a.Source)
		return ref, nil
	}
	c, ok := e.registry.Lookup(name)
	if !ok {
		return ref, fmt.Errorf("%s: %w", name, pipeline.ErrUnknownCommand)
	}
	e.println(e.Styles.Title.Render(c.Name) + " - " + c.Summary)
	if c.Usage != "" {
		e.println("usage: " + c.Usage)
	} else {
		e.printf("%s takes no arguments\n", c.Name)
	}
	return ref, nil
}

// save backs up the stored copy, then writes the current project.
func (e *Env) save(ctx context.Context, ref string, args []string) (string, error) {
	if e.Store == nil {
		return ref, ErrNoStore
	}
	stored, err := e.Store.LoadProject(ctx, e.Project.Name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return ref, err
	default:
		if err := e.Store.Backup(ctx, stored); err != nil {
			return ref, err
		}
	}
	if err := e.Save(ctx); err != nil {
		return ref, err
	}
	e.println(e.Styles.Success.Render("saved " + e.Project.Name))
	return ref, nil
}

// refresh saves the project, re-reads the settings and reloads the project,
// recompiling the aliases.
func (e *Env) refresh(ctx context.Context, ref string, args []string) (string, error) {
	if err := e.Save(ctx); err != nil {
		return ref, err
	}
	if err := e.ReloadSettings(); err != nil {
		return ref, err
	}
	if err := e.Load(ctx, e.Project.Name); err != nil {
		return ref, err
	}
	return ref, nil
}

// restore <code> replaces the project with its backup.
func (e *Env) restore(ctx context.Context, ref string, args []string) (string, error) {
	if err := e.checkCode(args[0]); err != nil {
		return ref, err
	}
	if e.Store == nil {
		return ref, ErrNoStore
	}
	name, path := e.Project.Name, e.Project.Path
	snap, err := e.Store.LoadProject(ctx, name+storage.BackupSuffix)
	if errors.Is(err, storage.ErrNotFound) {
		return ref, fmt.Errorf("no backup available for %s: %w", name, err)
	}
	if err != nil {
		return ref, err
	}
	p, err := snap.ToProject()
	if err != nil {
		return ref, err
	}
	p.Name, p.Path = name, path
	if err := e.Install(p); err != nil {
		return ref, err
	}
	e.printf("Restored %s from backup\n", name)
	return ref, nil
}

// higherOrder looks up a registered command and calls it with args.
func (e *Env) higherOrder(ctx context.Context, ref, name string, args []string) (string, error) {
	c, ok := e.registry.Lookup(name)
	if !ok {
		return ref, fmt.Errorf("can't find f: %s: %w", name, pipeline.ErrCommandNotFound)
	}
	return c.Call(ctx, ref, args)
}

// lhof <a,b,...> <f> [fargs...] calls f(a, b, ..., fargs...).
func (e *Env) lhof(ctx context.Context, ref string, args []string) (string, error) {
	list := strings.Split(args[0], ",")
	return e.higherOrder(ctx, ref, args[1], append(list, args[2:]...))
}

// rhof <a,b,...> <f> [fargs...] calls f(fargs..., a, b, ...).
func (e *Env) rhof(ctx context.Context, ref string, args []string) (string, error) {
	list := strings.Split(args[0], ",")
	call := append(append([]string{}, args[2:]...), list...)
	return e.higherOrder(ctx, ref, args[1], call)
}

// ihof <a,b,...> <i> <f> [fargs...] calls f(fargs[:i]..., a, b, ..., fargs[i:]...).
func (e *Env) ihof(ctx context.Context, ref string, args []string) (string, error) {
	list := strings.Split(args[0], ",")
	i, err := argInt("i", args[1])
	if err != nil {
		return ref, err
	}
	fargs := args[3:]
	if i < 0 || i > len(fargs) {
		return ref, fmt.Errorf("index %d outside of %d arguments: %w", i, len(fargs), pipeline.ErrArgument)
	}
	call := make([]string, 0, len(fargs)+len(list))
	call = append(call, fargs[:i]...)
	call = append(call, list...)
	call = append(call, fargs[i:]...)
	return e.higherOrder(ctx, ref, args[2], call)
}

func (e *Env) quit(ctx context.Context, ref string, args []string) (string, error) {
	e.println("quitting")
	return ref, pipeline.ErrQuit
}

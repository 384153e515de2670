package commands

import (
	"fmt"

	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
)

const variadic = pipeline.Variadic

// Register adds every built-in command bound to e to reg.
func Register(reg *pipeline.Registry, e *Env) error {
	e.registry = reg
	for _, c := range e.commands() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register %s: %w", c.Name, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in commands bound to e.
func NewRegistry(e *Env) (*pipeline.Registry, error) {
	reg := pipeline.NewRegistry()
	if err := Register(reg, e); err != nil {
		return nil, err
	}
	return reg, nil
}

func (e *Env) commands() []pipeline.Command {
	return []pipeline.Command{
		// reference and days
		{Name: "setreference", Usage: "setreference <date>", Summary: "Sets the reference, creating the day if needed.", MinArgs: 1, MaxArgs: 1, Run: e.setReference},
		{Name: "intelliref", Usage: "intelliref <token>", Summary: "Resolves start, stop, today, ref, i<N> or a date and sets the reference.", MinArgs: 1, MaxArgs: 1, Run: e.intelliRef},
		{Name: "mkday", Usage: "mkday <date>", Summary: "Creates a day.", MinArgs: 1, MaxArgs: 1, Run: e.mkDay},
		{Name: "days", Summary: "Prints the days of the project.", Run: e.listDays},
		{Name: "today", Summary: "Merges and prints the reference day.", Run: e.showToday},
		{Name: "generatedays", Usage: "generatedays [days]", Summary: "Generates the next days, today included.", MaxArgs: 1, Run: e.generateDays},
		{Name: "fillemptydays", Usage: "fillemptydays [start] [stop]", Summary: "Creates the missing days in a range without applying the schedule.", MaxArgs: 2, Run: e.fillEmptyDays},
		{Name: "deleteday", Summary: "Deletes the reference day.", Run: e.deleteDay},
		{Name: "clear", Usage: "clear <code>", Summary: "Backs up the project and deletes all days.", MinArgs: 1, MaxArgs: 1, Run: e.clearDays},
		{Name: "clearfuture", Usage: "clearfuture <code>", Summary: "Backs up the project and deletes the days after today.", MinArgs: 1, MaxArgs: 1, Run: e.clearFuture},
		{Name: "split", Usage: "split <date> <name>", Summary: "Moves the days up to date into the project name.", MinArgs: 2, MaxArgs: 2, Run: e.splitProject},

		// events
		{Name: "mkevent", Usage: "mkevent <what> [tags] [start] [end] [force]", Summary: "Creates an event on the reference day.", MinArgs: 1, MaxArgs: 5, Run: e.mkEvent},
		{Name: "mktime", Usage: "mktime <what> <tags> <start> [date]", Summary: "Creates a silent event.", MinArgs: 3, MaxArgs: 4, Run: e.mkTime},
		{Name: "times", Usage: "times [days]", Summary: "Prints the silent events of the next days.", MaxArgs: 1, Run: e.listTimes},
		{Name: "getcurrent", Summary: "Prints the current event.", Run: e.getCurrent},
		{Name: "end", Summary: "Ends the current event now.", Run: e.endCurrent},
		{Name: "deleteevent", Usage: "deleteevent <start> <end>", Summary: "Deletes an event of the reference day.", MinArgs: 2, MaxArgs: 2, Run: e.deleteEvent},
		{Name: "changeevent", Usage: "changeevent <start> <end> time|what|tags <args...>", Summary: "Changes an event of the reference day.", MinArgs: 4, MaxArgs: 5, Run: e.changeEvent},
		{Name: "changeeventtime", Usage: "changeeventtime <start> <end> [newstart] [newend]", Summary: "Moves an event of the reference day.", MinArgs: 2, MaxArgs: 4, Run: e.changeEventTime},
		{Name: "changeeventwhat", Usage: "changeeventwhat <start> <end> <what>", Summary: "Relabels an event of the reference day.", MinArgs: 3, MaxArgs: 3, Run: e.changeEventWhat},
		{Name: "changeeventtags", Usage: "changeeventtags <start> <end> <tags>", Summary: "Retags an event of the reference day.", MinArgs: 3, MaxArgs: 3, Run: e.changeEventTags},
		{Name: "merge", Summary: "Merges adjacent events with the same label and tags on every day.", Run: e.mergeAll},

		// notes
		{Name: "note", Usage: "note <text...>", Summary: "Adds a note to the todo list.", MinArgs: 1, MaxArgs: variadic, Run: e.addNote},
		{Name: "notes", Summary: "Prints all notes.", Run: e.listNotes},
		{Name: "deletenote", Usage: "deletenote <text...>", Summary: "Deletes the note with the given text.", MinArgs: 1, MaxArgs: variadic, Run: e.deleteNote},
		{Name: "deletenoteid", Usage: "deletenoteid <id>", Summary: "Deletes the note whose id starts with id.", MinArgs: 1, MaxArgs: 1, Run: e.deleteNoteID},
		{Name: "deletenotes", Summary: "Deletes all notes.", Run: e.deleteNotes},

		// sport
		{Name: "addrun", Usage: "addrun <start> <MM:SS> <distance>", Summary: "Logs a run on the reference day.", MinArgs: 3, MaxArgs: 3, Run: e.addRun},
		{Name: "addpushup", Usage: "addpushup <start> <MM:SS,...> <count,...>", Summary: "Logs push-up series on the reference day.", MinArgs: 3, MaxArgs: 3, Run: e.addPushUp},
		{Name: "addplank", Usage: "addplank <start> <MM:SS>", Summary: "Logs a plank on the reference day.", MinArgs: 2, MaxArgs: 2, Run: e.addPlank},
		{Name: "addsitup", Usage: "addsitup <start> <MM:SS> <count>", Summary: "Logs sit-ups on the reference day.", MinArgs: 3, MaxArgs: 3, Run: e.addSitUp},
		{Name: "delrun", Usage: "delrun <start>", Summary: "Deletes a run of the reference day.", MinArgs: 1, MaxArgs: 1, Run: e.removeSport(project.KindRuns)},
		{Name: "delpushup", Usage: "delpushup <start>", Summary: "Deletes push-ups of the reference day.", MinArgs: 1, MaxArgs: 1, Run: e.removeSport(project.KindPushUps)},
		{Name: "delplank", Usage: "delplank <start>", Summary: "Deletes a plank of the reference day.", MinArgs: 1, MaxArgs: 1, Run: e.removeSport(project.KindPlanks)},
		{Name: "delsitup", Usage: "delsitup <start>", Summary: "Deletes sit-ups of the reference day.", MinArgs: 1, MaxArgs: 1, Run: e.removeSport(project.KindSitUps)},
		{Name: "showruns", Summary: "Prints the runs of the reference day.", Run: e.showRuns},
		{Name: "runstats", Summary: "Sums up the runs of the reference day.", Run: e.runStats},
		{Name: "runsum", Usage: "runsum [k]", Summary: "Sums up the runs of the k days before the reference and the reference day.", MaxArgs: 1, Run: e.runSum},

		// sleep
		{Name: "ourasleep", Usage: "ourasleep [start] [stop]", Summary: "Fetches sleep data from the provider.", MaxArgs: 2, Run: e.ouraSleep},
		{Name: "getsleep", Usage: "getsleep <date>", Summary: "Prints the sleep of a day.", MinArgs: 1, MaxArgs: 1, Run: e.getSleep},
		{Name: "setsleep", Usage: "setsleep <date> <start> <end> [phases]", Summary: "Sets the sleep of a day.", MinArgs: 3, MaxArgs: 4, Run: e.setSleep},
		{Name: "lastnightsleep", Summary: "Prints the sleep of the day before the reference.", Run: e.lastNightSleep},

		// functions
		{Name: "updatefunction", Usage: "updatefunction <name> <value> [date]", Summary: "Sets a named value on a day.", MinArgs: 2, MaxArgs: 3, Run: e.updateFunction},
		{Name: "getfunction", Usage: "getfunction <name> [date]", Summary: "Prints a named value of a day.", MinArgs: 1, MaxArgs: 2, Run: e.getFunction},

		// analysis
		{Name: "stats", Usage: "stats <tags> [start] [stop]", Summary: "Prints daily averages for tags.", MinArgs: 1, MaxArgs: 3, Run: e.stats},
		{Name: "tags", Summary: "Prints all tags.", Run: e.listTags},
		{Name: "tagsummary", Usage: "tagsummary [start] [stop]", Summary: "Prints hours and events per tag.", MaxArgs: 2, Run: e.tagSummary},
		{Name: "renametag", Usage: "renametag <from> <to>", Summary: "Renames a tag on every event.", MinArgs: 2, MaxArgs: 2, Run: e.renameTag},
		{Name: "deletetag", Usage: "deletetag <tag>", Summary: "Removes a tag from every event.", MinArgs: 1, MaxArgs: 1, Run: e.deleteTag},
		{Name: "deletebytag", Usage: "deletebytag <tag>", Summary: "Deletes every event carrying a tag.", MinArgs: 1, MaxArgs: 1, Run: e.deleteByTag},
		{Name: "topdegrees", Usage: "topdegrees [k] [start] [stop]", Summary: "Prints the tags with the most co-occurring tags.", MaxArgs: 3, Run: e.topDegrees},
		{Name: "rcc", Usage: "rcc <hours> [start] [stop]", Summary: "Prints the tag clusters active at a threshold.", MinArgs: 1, MaxArgs: 3, Run: e.relativeComponents},
		{Name: "gblgetsplitforce", Usage: "gblgetsplitforce [start] [stop]", Summary: "Finds the threshold where tag clusters split.", MaxArgs: 2, Run: e.splitForce},
		{Name: "gbltreeview", Usage: "gbltreeview [start] [stop]", Summary: "Prints the tag cluster filtration.", MaxArgs: 2, Run: e.treeView},

		// meta
		{Name: "commands", Summary: "Prints all commands.", Run: e.listCommands},
		{Name: "aliases", Summary: "Prints all aliases.", Run: e.listAliases},
		{Name: "help", Usage: "help <command>", Summary: "Describes a command or alias.", MinArgs: 1, MaxArgs: 1, Run: e.help},
		{Name: "save", Summary: "Saves the project, keeping the previous save as backup.", Run: e.save},
		{Name: "refresh", Summary: "Saves and reloads the project.", Run: e.refresh},
		{Name: "restore", Usage: "restore <code>", Summary: "Restores the project from its backup.", MinArgs: 1, MaxArgs: 1, Run: e.restore},
		{Name: "lhof", Usage: "lhof <a,b,...> <f> [args...]", Summary: "Calls f with the list followed by args.", MinArgs: 2, MaxArgs: variadic, Run: e.lhof},
		{Name: "rhof", Usage: "rhof <a,b,...> <f> [args...]", Summary: "Calls f with args followed by the list.", MinArgs: 2, MaxArgs: variadic, Run: e.rhof},
		{Name: "ihof", Usage: "ihof <a,b,...> <i> <f> [args...]", Summary: "Calls f with the list inserted into args at i.", MinArgs: 3, MaxArgs: variadic, Run: e.ihof},
		{Name: "quit", Summary: "Saves and quits.", Run: e.quit},
	}
}

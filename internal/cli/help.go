package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/datalayer/internal/ui"
)

// minFlagWidth keeps flag descriptions aligned across sections.
const minFlagWidth = 28

func helpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s\n", ui.Heading(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	writeUsage(w, cmd)
	writeExamples(w, cmd.Example)
	writeCommands(w, cmd)

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Section("Flags"))
		writeFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Section("Global Flags"))
		writeFlags(w, cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", ui.Dim(fmt.Sprintf("Use \"%s <command> --help\" for more information about a command.", cmd.CommandPath())))
	}
	fmt.Fprintln(w)
}

func usageFunc(cmd *cobra.Command) error {
	w := cmd.ErrOrStderr()

	writeUsage(w, cmd)
	writeCommands(w, cmd)
	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Section("Flags"))
		writeFlags(w, cmd.LocalFlags().FlagUsages())
	}
	fmt.Fprintf(w, "\n%s\n", ui.Dim(fmt.Sprintf("Use \"%s --help\" for more information.", cmd.CommandPath())))
	return nil
}

func writeUsage(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Section("Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s %s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset, ui.Dim("[flags]"))
	}
}

// writeExamples prints comment lines dimmed and commands with a prompt.
func writeExamples(w io.Writer, example string) {
	if example == "" {
		return
	}
	fmt.Fprintf(w, "\n%s\n", ui.Section("Examples"))
	afterCommand := false
	for _, line := range strings.Split(example, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if afterCommand {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", ui.Dim(line))
			afterCommand = false
		default:
			fmt.Fprintf(w, "  %s\n", ui.Success("$ "+line))
			afterCommand = true
		}
	}
}

func writeCommands(w io.Writer, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}

	var cmds []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			cmds = append(cmds, c)
			width = max(width, len(c.Name()))
		}
	}

	fmt.Fprintf(w, "\n%s\n", ui.Section("Commands"))
	for _, c := range cmds {
		fmt.Fprintf(w, "  %s%-*s%s  %s\n", ui.ColorCyan, width, c.Name(), ui.ColorReset, ui.Dim(c.Short))
	}
}

// writeFlags re-renders pflag's usage block with colored flag names and
// descriptions aligned in one column.
func writeFlags(w io.Writer, usages string) {
	type entry struct{ flag, desc string }

	var entries []entry
	width := minFlagWidth
	for _, line := range strings.Split(usages, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") && len(entries) > 0 {
			// Continuation of the previous description.
			entries[len(entries)-1].desc += " " + trimmed
			continue
		}
		flag, desc, _ := strings.Cut(trimmed, "  ")
		e := entry{flag: strings.TrimSpace(flag), desc: strings.TrimSpace(desc)}
		width = max(width, len(e.flag))
		entries = append(entries, e)
	}

	for _, e := range entries {
		fmt.Fprintf(w, "  %s%-*s%s  %s\n", ui.ColorGreen, width, e.flag, ui.ColorReset, ui.Dim(e.desc))
	}
}

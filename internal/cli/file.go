package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/filehandle"
	"github.com/darshit3596/shreejida/internal/lifecycle"
)

// FileResult reports the outcome of new, open and save-as.
type FileResult struct {
	Action string `json:"action"`
	File   string `json:"file,omitempty"`
	Done   bool   `json:"done"`
}

func (r FileResult) text(w io.Writer) {
	if !r.Done {
		fmt.Fprintln(w, "Cancelled.")
		return
	}
	switch r.Action {
	case "new":
		fmt.Fprintf(w, "Created %s\n", r.File)
	case "open":
		fmt.Fprintf(w, "Opened %s\n", r.File)
	default:
		if r.File == "" {
			fmt.Fprintln(w, "Saved a copy.")
			return
		}
		fmt.Fprintf(w, "Saved a copy to %s\n", r.File)
	}
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new [path]",
		Short: "Create a new database file and make it current",
		Long: `Create a new database file with the default shop settings and use it
from now on. Without a path you are asked for one; ".db" is added when the
name has no extension.

A database that is already in use is only replaced with --force.

Examples:
  shreejida new shop.db
  shreejida new --force ~/shop-2025.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if len(args) == 1 {
				e.prompter.Preset(args[0])
			}

			ok, err := e.session.NewFile(e.ctx, force)
			if err != nil {
				return fileError("create database file", err)
			}
			res := FileResult{Action: "new", File: e.session.Controller.FileName(), Done: ok}
			return e.out.Success(res, res.text)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace the database currently in use")
	return cmd
}

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "open [path]",
		Short: "Switch to an existing database file",
		Long: `Load an existing database file and use it from now on. A file that
cannot be read as a database is rejected and forgotten.

A database that is already in use is only replaced with --force.

Examples:
  shreejida open shop.db
  shreejida open --force /mnt/backup/shop.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if len(args) == 1 {
				e.prompter.Preset(args[0])
			}

			ok, err := e.session.OpenFile(e.ctx, force)
			if err != nil {
				return fileError("open database file", err)
			}
			if !ok && !e.session.Ready() && len(args) == 1 {
				return NewExitError(ExitFailure, fmt.Sprintf("%s is not a readable database file", args[0]))
			}
			res := FileResult{Action: "open", File: e.session.Controller.FileName(), Done: ok}
			return e.out.Success(res, res.text)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace the database currently in use")
	return cmd
}

// NewSaveAsCommand creates the save-as command.
func NewSaveAsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save-as [path]",
		Short: "Write a copy of the current database to another file",
		Long: `Write a copy of the current database file, for example as a backup.
The current file stays in use.

Examples:
  shreejida save-as /mnt/usb/shop-backup.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireReady(); err != nil {
				return err
			}
			var target string
			if len(args) == 1 {
				e.prompter.Preset(args[0])
				target = filehandle.EnsureExtension(args[0])
			}

			ok, err := e.session.SaveAs(e.ctx)
			if err != nil {
				return fileError("save copy", err)
			}
			res := FileResult{Action: "save-as", File: target, Done: ok}
			return e.out.Success(res, res.text)
		},
	}
}

func fileError(action string, err error) error {
	if errors.Is(err, lifecycle.ErrAlreadyReady) {
		return WrapExitError(ExitCommandError, action+" (use --force to replace the database in use)", err)
	}
	return WrapExitError(ExitFailure, action, err)
}

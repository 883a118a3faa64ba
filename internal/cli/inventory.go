package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/model"
)

// NewInventoryCommand creates the inventory command.
func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	var low bool

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "List inventory items",
		Long: `List the inventory items in the current database, in the order they
were added.

Items whose stock is not tracked show "unlimited". Items at or below their
minimum stock are flagged "low"; --low lists only those.

Examples:
  shreejida inventory
  shreejida inventory --low`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireReady(); err != nil {
				return err
			}

			var items []model.InventoryItem
			if low {
				items = e.session.State.LowStock()
			} else {
				items = e.session.State.Inventory()
			}
			return e.out.Success(items, func(w io.Writer) { writeInventoryTable(w, items) })
		},
	}

	cmd.Flags().BoolVar(&low, "low", false, "only items at or below their minimum stock")
	return cmd
}

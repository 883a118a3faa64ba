// Command shreejida keeps a shop's invoices and inventory in one database file.
package main

import (
	"fmt"
	"os"

	"github.com/darshit3596/shreejida/internal/cli"
)

func main() {
	opts := &cli.RootOptions{}
	cmd := cli.NewRootCommandWith(opts)
	err := cmd.Execute()
	if err == nil {
		return
	}

	if opts.Format == "json" {
		out := &cli.OutputFormatter{Format: "json", Writer: os.Stdout}
		_ = out.Error(cli.ErrorCode(err), err.Error(), nil)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}

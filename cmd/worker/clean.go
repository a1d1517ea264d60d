package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/atoav/bender-worker-go/internal/config"
)

var forceFlag bool

var cleanCmd = &cobra.Command{
	Use:       "clean {blendfiles|frames}",
	Short:     "Recursively delete downloaded scene files or rendered frame outputs",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"blendfiles", "frames"},
	RunE:      runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&forceFlag, "force", false, "skip the confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var target string
	switch args[0] {
	case "blendfiles":
		target = cfg.BlendPath
	case "frames":
		target = cfg.OutPath
	}

	if !forceFlag {
		prompt := config.NewPrompter()
		fmt.Fprintf(os.Stdout, "This will permanently delete everything under %s\n", target)
		answer := prompt.Ask("Type 'yes' to continue", "no")
		if answer != "yes" {
			fmt.Fprintln(os.Stdout, "aborted")
			return nil
		}
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return errors.Wrapf(err, "worker: reading %s", target)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(target, e.Name())); err != nil {
			return errors.Wrapf(err, "worker: removing %s", e.Name())
		}
	}
	fmt.Fprintf(os.Stdout, "cleaned %s\n", target)
	return nil
}

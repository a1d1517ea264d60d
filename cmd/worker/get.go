package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:       "get {outpath|blendpath|id|benderurl}",
	Short:     "Print one field of the persisted configuration",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"outpath", "blendpath", "id", "benderurl"},
	RunE:      runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var value string
	switch args[0] {
	case "outpath":
		value = cfg.OutPath
	case "blendpath":
		value = cfg.BlendPath
	case "id":
		value = cfg.ID
	case "benderurl":
		value = cfg.BenderURL
	}
	fmt.Println(value)
	return nil
}

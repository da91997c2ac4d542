package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/dotenvpull/cmd"
	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func main() {
	cmd.RootCmd.Run = func(c *cobra.Command, args []string) {
		figure.NewColorFigure("dotenvpull", "small", "cyan", true).Print()
		fmt.Println()
		fmt.Println("Welcome to dotenvpull! Run " + ui.Code.Sprint("dotenvpull --help") + " to see available commands.")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

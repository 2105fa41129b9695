package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studyhall-ai/studyhall/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "studyhalld",
		Short: "Studyhall daemon",
		Long:  "Studyhall daemon for running the lesson indexing and retrieval API server",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

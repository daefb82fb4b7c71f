package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)

	root := &cobra.Command{
		Use:           "pulse-bench",
		Short:         "Benchmark and demo tooling for the pulse reactive engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newBenchCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

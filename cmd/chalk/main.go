// Package main provides the Chalk CLI.
package main

import (
	"fmt"
	"os"

	"github.com/chalk-ml/chalk/internal/serialization"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Chalk %s\n", version)
			return
		case "inspect":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: chalk inspect <checkpoint.chalk>")
				os.Exit(1)
			}
			if err := inspect(os.Args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Chalk - Small neural networks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version               Show version")
	fmt.Println("  inspect <file>        Dump a .chalk checkpoint header")
}

func inspect(path string) error {
	checkpoint, err := serialization.Read(path)
	if err != nil {
		return err
	}

	fmt.Printf("epoch: %d\n", checkpoint.Epoch)
	fmt.Printf("cost:  %g\n", checkpoint.Cost)
	fmt.Printf("tensors (%d):\n", len(checkpoint.Tensors))
	for _, nt := range checkpoint.Tensors {
		fmt.Printf("  %-24s %-8v shape=%v\n", nt.Name, nt.Raw.DType(), nt.Raw.Shape())
	}
	return nil
}

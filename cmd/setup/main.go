package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/petnest/internal/setup"
)

func main() {
	if err := setup.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

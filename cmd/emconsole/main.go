package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ritikrathore0011/Employee-Management/internal/consolecli"
)

func main() {
	if err := consolecli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, consolecli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			consolecli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line entry point for the Akaylee Boundary tools.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/akaylee-boundary/cmd/fuzzer/commands"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := commands.NewRootCommand(viper.GetViper())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

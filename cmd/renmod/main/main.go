package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	renmod "github.com/renmod/renmod/cmd/renmod"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func main() {
	rootCmd := renmod.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

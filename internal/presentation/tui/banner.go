package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown when the chat session starts.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Warm gradient, one color per line
	s1 := termenv.String("   _____ _               _      _____       ").Foreground(p.Color("#34d399"))
	s2 := termenv.String("  / ____| |             | |    |_   _|      ").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String(" | |    | |__   ___  ___| | __   | |  _ __  ").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(" | |    | '_ \\ / _ \\/ __| |/ /   | | | '_ \\ ").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String(" | |____| | | |  __/ (__|   <   _| |_| | | |").Foreground(p.Color("#60a5fa"))
	s6 := termenv.String("  \\_____|_| |_|\\___|\\___|_|\\_\\ |_____|_| |_|").Foreground(p.Color("#818cf8"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}

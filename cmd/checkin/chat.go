package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barfet/wellbeing-check-in-agent/internal/presentation/tui"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive reflection session in the terminal",
	Long:  `Runs a check-in conversation directly in the terminal, without the HTTP server. The session ends when the agent presents its summary or on Ctrl-D.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp(cmd.Context(), cmd, false)
		if err != nil {
			fmt.Printf("Error initializing checkin: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		topic, _ := cmd.Flags().GetString("topic")
		render := tui.NewRenderer()
		printAgent := func(text string) {
			out, err := render(text)
			if err != nil {
				fmt.Println(text)
				return
			}
			fmt.Print(out)
		}

		tui.PrintBanner()

		state := domain.NewConversationState(topic)
		result, err := app.orc.Run(cmd.Context(), state)
		if err != nil {
			fmt.Printf("Error starting conversation: %v\n", err)
			os.Exit(1)
		}
		printAgent(result.AgentOutput)

		reader := bufio.NewReader(os.Stdin)
		for !result.IsFinal {
			fmt.Print("> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println("\nGoodbye!")
				return
			}
			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}

			result.State.AppendUser(input)
			result, err = app.orc.Run(cmd.Context(), result.State)
			if err != nil {
				fmt.Printf("Error processing turn: %v\n", err)
				os.Exit(1)
			}
			printAgent(result.AgentOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("topic", "", "Topic to reflect on")
}

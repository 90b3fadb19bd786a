package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

var askCmd = &cobra.Command{
	Use:   "ask <session-id> <message>",
	Short: "Send a message and stream the reply",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Print a session's transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var infoCmd = &cobra.Command{
	Use:   "info <session-id>",
	Short: "Print a session's profile and status",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var recipeCmd = &cobra.Command{
	Use:   "recipe <session-id>",
	Short: "Print a session's finalized recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipe,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runHealth(cmd *cobra.Command, args []string) error {
	status, err := newBackend().HealthCheck(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	text := strings.Join(args[1:], " ")

	reply, err := newBackend().StreamMessage(cmd.Context(), args[0], text, func(delta string) {
		fmt.Fprint(out, delta)
	})
	if err != nil {
		return err
	}
	if !strings.HasSuffix(reply.Response, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	messages, err := newBackend().GetHistory(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(messages) == 0 {
		fmt.Fprintln(out, "(no messages)")
		return nil
	}
	for i, m := range messages {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "[%s]\n%s\n", m.Role, strings.TrimRight(m.Content, "\n"))
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := newBackend().GetSessionInfo(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(struct {
		Status       string   `json:"status"`
		Allergy      []string `json:"allergy"`
		Preferences  string   `json:"preferences"`
		CookingLevel string   `json:"cooking_level"`
		FoodType     string   `json:"food_type"`
	}{
		Status:       string(info.Status()),
		Allergy:      info.Allergy,
		Preferences:  info.Preferences,
		CookingLevel: string(info.CookingLevel),
		FoodType:     info.FoodType,
	})
}

func runRecipe(cmd *cobra.Command, args []string) error {
	r, err := newBackend().GetFinalRecipe(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, r.Name)
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.TrimRight(r.Content, "\n"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Image prompt: %s\n", r.ImagePrompt)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ack, err := newBackend().DeleteSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ack)
	return nil
}

package cli

import (
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [student-id]",
	Short: "Suggest the next quests for a student",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	resp := svc.Sync.FetchRecommendations(cmd.Context(), args[0])
	cmd.Printf("Focus: %s\n", resp.NextFocusArea)

	if len(resp.RecommendedQuests) == 0 {
		cmd.Println("No quest recommendations yet.")
	}
	for _, r := range resp.RecommendedQuests {
		cmd.Printf("%d. %s (%.0f%%)", r.SuggestedOrder, r.QuestID, r.Confidence*100)
		if r.Reasoning != "" {
			cmd.Printf(" - %s", r.Reasoning)
		}
		cmd.Println()
	}

	for _, in := range resp.LearningInsights {
		cmd.Printf("[%s] %s\n", in.Type, in.Insight)
	}
	return nil
}

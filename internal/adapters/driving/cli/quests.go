package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/domain"
)

var questsCmd = &cobra.Command{
	Use:     "quests",
	Aliases: []string{"quest"},
	Short:   "Manage quests",
}

var questsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quests",
	Args:  cobra.NoArgs,
	RunE:  runQuestsList,
}

var questsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a quest and its questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestsShow,
}

var questsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a quest from a JSON file",
	Long: `Create a quest from a JSON file. Use --file - to read standard input.

Missing difficulty, maxScore, timeLimit and completionScore take the
defaults 1, 100, 60 and 80.`,
	Args: cobra.NoArgs,
	RunE: runQuestsCreate,
}

var questsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a quest from a JSON file",
	Long:  `Update a quest. The file holds only the fields to change.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestsUpdate,
}

var questsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a quest",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestsDelete,
}

var questFile string

func init() {
	for _, c := range []*cobra.Command{questsCreateCmd, questsUpdateCmd} {
		c.Flags().StringVarP(&questFile, "file", "f", "", "JSON file (- for stdin)")
		_ = c.MarkFlagRequired("file")
	}

	questsCmd.AddCommand(questsListCmd)
	questsCmd.AddCommand(questsShowCmd)
	questsCmd.AddCommand(questsCreateCmd)
	questsCmd.AddCommand(questsUpdateCmd)
	questsCmd.AddCommand(questsDeleteCmd)
	rootCmd.AddCommand(questsCmd)
}

func runQuestsList(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	quests := svc.Sync.FetchQuests(cmd.Context())
	if len(quests) == 0 {
		cmd.Println("No quests.")
		return nil
	}
	for _, q := range quests {
		cmd.Printf("%-24s %-8s d%d  %2d questions  %s\n", q.ID, q.Type, q.Difficulty, len(q.Questions), q.Title)
	}
	return nil
}

func runQuestsShow(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	q, ok := svc.Sync.FetchQuest(cmd.Context(), args[0])
	if !ok {
		return fmt.Errorf("quest %s: %w", args[0], domain.ErrNotFound)
	}
	cmd.Printf("%s (%s)\n", q.Title, q.ID)
	cmd.Printf("Type: %s  Difficulty: %d  Mode: %s\n", q.Type, q.Difficulty, q.PlayMode)
	cmd.Printf("Max score: %d  Pass at: %d  Time limit: %ds\n", q.MaxScore, q.CompletionScore, q.TimeLimit)
	if q.Description != "" {
		cmd.Println(q.Description)
	}
	for _, question := range q.Questions {
		cmd.Printf("\n%d. %s\n", question.Order, question.Prompt)
		for _, a := range question.Answers {
			marker := " "
			if a.IsCorrect {
				marker = "*"
			}
			cmd.Printf("   %s %s\n", marker, a.Label)
		}
	}
	return nil
}

func runQuestsCreate(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	var draft domain.Quest
	if err := readJSONFile(cmd, questFile, &draft); err != nil {
		return err
	}
	q, err := svc.Sync.CreateQuest(cmd.Context(), draft)
	if err != nil {
		return err
	}
	cmd.Printf("Created quest %q (%s)\n", q.Title, q.ID)
	return nil
}

func runQuestsUpdate(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	var patch domain.QuestPatch
	if err := readJSONFile(cmd, questFile, &patch); err != nil {
		return err
	}
	q, err := svc.Sync.UpdateQuest(cmd.Context(), args[0], patch)
	if err != nil {
		return err
	}
	cmd.Printf("Updated quest %q (%s)\n", q.Title, q.ID)
	return nil
}

func runQuestsDelete(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	if err := svc.Sync.DeleteQuest(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted quest %s\n", args[0])
	return nil
}

// readJSONFile decodes path, or the command's input when path is "-".
func readJSONFile(cmd *cobra.Command, path string, v any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w: %w", path, domain.ErrInvalidInput, err)
	}
	return nil
}

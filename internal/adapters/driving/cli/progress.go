package cli

import (
	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/domain"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "View and record quest progress",
}

var progressListCmd = &cobra.Command{
	Use:   "list [student-id]",
	Short: "List progress records",
	Long:  `List progress records of one student, or of everyone when no id is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProgressList,
}

var progressSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record a quest attempt",
	Long: `Record a quest attempt. The backend write is retried; if it still fails
the attempt is queued and the student's XP is updated locally.`,
	Args: cobra.NoArgs,
	RunE: runProgressSubmit,
}

var progressFlags struct {
	student   string
	quest     string
	score     int
	attempts  int
	completed bool
}

func init() {
	f := progressSubmitCmd.Flags()
	f.StringVar(&progressFlags.student, "student", "", "student id")
	f.StringVar(&progressFlags.quest, "quest", "", "quest id")
	f.IntVar(&progressFlags.score, "score", 0, "score achieved")
	f.IntVar(&progressFlags.attempts, "attempts", 1, "number of attempts")
	f.BoolVar(&progressFlags.completed, "completed", false, "the quest was completed")
	_ = progressSubmitCmd.MarkFlagRequired("student")
	_ = progressSubmitCmd.MarkFlagRequired("quest")

	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressSubmitCmd)
	rootCmd.AddCommand(progressCmd)
}

func runProgressList(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	var records []domain.Progress
	if len(args) == 1 {
		records = svc.Sync.FetchProgress(cmd.Context(), args[0])
	} else {
		records = svc.Sync.FetchAllProgress(cmd.Context())
	}
	if len(records) == 0 {
		cmd.Println("No progress recorded.")
		return nil
	}
	for _, p := range records {
		done := "in progress"
		if p.Completed {
			done = "completed"
		}
		cmd.Printf("%-24s %-24s score %-4d attempts %-2d %s\n", p.StudentID, p.QuestID, p.Score, p.Attempts, done)
	}
	return nil
}

func runProgressSubmit(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	outcome, err := svc.Sync.SubmitProgress(cmd.Context(), domain.Progress{
		StudentID: progressFlags.student,
		QuestID:   progressFlags.quest,
		Score:     progressFlags.score,
		Attempts:  progressFlags.attempts,
		Completed: progressFlags.completed,
	})
	if err != nil {
		return err
	}
	printOutcome(cmd, "Progress", outcome)
	return nil
}

func printOutcome(cmd *cobra.Command, what string, outcome domain.WriteOutcome) {
	switch outcome {
	case domain.OutcomeSynced:
		cmd.Printf("%s saved.\n", what)
	default:
		cmd.Printf("%s saved locally and queued for sync.\n", what)
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/domain"
)

var studentsCmd = &cobra.Command{
	Use:     "students",
	Aliases: []string{"student"},
	Short:   "Manage students",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List students",
	Args:  cobra.NoArgs,
	RunE:  runStudentsList,
}

var studentsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one student",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentsShow,
}

var studentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student",
	Args:  cobra.NoArgs,
	RunE:  runStudentsAdd,
}

var studentsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a student",
	Long:  `Update a student. Only the flags that are given are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentsUpdate,
}

var studentsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a student",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentsDelete,
}

var studentFlags struct {
	name   string
	avatar string
	level  int
	xp     int
	phone  string
}

func init() {
	for _, c := range []*cobra.Command{studentsAddCmd, studentsUpdateCmd} {
		c.Flags().StringVar(&studentFlags.name, "name", "", "display name")
		c.Flags().StringVar(&studentFlags.avatar, "avatar", "", "avatar identifier")
		c.Flags().IntVar(&studentFlags.level, "level", 1, "level")
		c.Flags().IntVar(&studentFlags.xp, "xp", 0, "experience points")
		c.Flags().StringVar(&studentFlags.phone, "phone", "", "parent phone number")
	}
	_ = studentsAddCmd.MarkFlagRequired("name")

	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsShowCmd)
	studentsCmd.AddCommand(studentsAddCmd)
	studentsCmd.AddCommand(studentsUpdateCmd)
	studentsCmd.AddCommand(studentsDeleteCmd)
	rootCmd.AddCommand(studentsCmd)
}

func runStudentsList(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	students := svc.Sync.FetchStudents(cmd.Context())
	if len(students) == 0 {
		cmd.Println("No students.")
		return nil
	}
	for _, s := range students {
		printStudentLine(cmd, s)
	}
	return nil
}

func runStudentsShow(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	s, ok := svc.Sync.FetchStudent(cmd.Context(), args[0])
	if !ok {
		return fmt.Errorf("student %s: %w", args[0], domain.ErrNotFound)
	}
	cmd.Printf("ID:     %s\n", s.ID)
	cmd.Printf("Name:   %s\n", s.Name)
	cmd.Printf("Level:  %d\n", s.Level)
	cmd.Printf("XP:     %d\n", s.XP)
	if s.ParentPhone != "" {
		cmd.Printf("Parent: %s\n", s.ParentPhone)
	}
	if domain.IsTemporaryID(s.ID) {
		cmd.Println("Not yet saved on the backend.")
	}
	return nil
}

func runStudentsAdd(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	draft := domain.StudentDraft{
		Name:        studentFlags.name,
		Avatar:      studentFlags.avatar,
		Level:       studentFlags.level,
		XP:          studentFlags.xp,
		ParentPhone: studentFlags.phone,
	}
	s, err := svc.Sync.CreateStudent(cmd.Context(), draft)
	if err != nil {
		return err
	}
	cmd.Printf("Added student %s (%s)\n", s.Name, s.ID)
	return nil
}

func runStudentsUpdate(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	var patch domain.StudentPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &studentFlags.name
	}
	if flags.Changed("avatar") {
		patch.Avatar = &studentFlags.avatar
	}
	if flags.Changed("level") {
		patch.Level = &studentFlags.level
	}
	if flags.Changed("xp") {
		patch.XP = &studentFlags.xp
	}
	if flags.Changed("phone") {
		patch.ParentPhone = &studentFlags.phone
	}
	if patch == (domain.StudentPatch{}) {
		return errors.New("nothing to update: pass at least one flag")
	}

	s, err := svc.Sync.UpdateStudent(cmd.Context(), args[0], patch)
	if err != nil {
		return err
	}
	cmd.Printf("Updated student %s\n", s.ID)
	return nil
}

func runStudentsDelete(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	if err := svc.Sync.DeleteStudent(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted student %s\n", args[0])
	return nil
}

func printStudentLine(cmd *cobra.Command, s domain.Student) {
	cmd.Printf("%-24s %-20s level %-3d %5d XP\n", s.ID, s.Name, s.Level, s.XP)
}

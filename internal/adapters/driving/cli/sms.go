package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/learnquest/questsync/internal/core/domain"
)

var smsCmd = &cobra.Command{
	Use:   "sms",
	Short: "Parent SMS notifications",
}

var smsLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List sent messages",
	Args:  cobra.NoArgs,
	RunE:  runSMSLogs,
}

var smsSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message to a parent",
	Args:  cobra.NoArgs,
	RunE:  runSMSSend,
}

var smsFlags struct {
	student string
	phone   string
	message string
	kind    string
}

func init() {
	f := smsSendCmd.Flags()
	f.StringVar(&smsFlags.student, "student", "", "student id")
	f.StringVar(&smsFlags.phone, "phone", "", "parent phone number")
	f.StringVar(&smsFlags.message, "message", "", "message text")
	f.StringVar(&smsFlags.kind, "type", string(domain.SMSTypeProgress), "welcome, progress, achievement or weekly")
	_ = smsSendCmd.MarkFlagRequired("student")
	_ = smsSendCmd.MarkFlagRequired("phone")
	_ = smsSendCmd.MarkFlagRequired("message")

	smsCmd.AddCommand(smsLogsCmd)
	smsCmd.AddCommand(smsSendCmd)
	rootCmd.AddCommand(smsCmd)
}

func runSMSLogs(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	logs := svc.Sync.FetchSMSLogs(cmd.Context())
	if len(logs) == 0 {
		cmd.Println("No messages.")
		return nil
	}
	for _, l := range logs {
		cmd.Printf("%s  %-8s %-12s %-16s %s\n", l.SentAt.Local().Format(time.DateTime), l.Status, l.Type, l.PhoneNumber, l.Message)
	}
	return nil
}

func runSMSSend(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	outcome, err := svc.Sync.SendSMS(cmd.Context(), domain.SMSRequest{
		StudentID:   smsFlags.student,
		PhoneNumber: smsFlags.phone,
		Message:     smsFlags.message,
		Type:        domain.SMSType(smsFlags.kind),
	})
	if err != nil {
		return err
	}
	printOutcome(cmd, "Message", outcome)
	return nil
}

package entity

import "github.com/learnquest/questsync/internal/core/domain"

// SMSLog normalises a single SMS log entry.
func (n *Normaliser) SMSLog(raw any) domain.SMSLog {
	return n.smsLog(asObject(decode(raw)))
}

// SMSLogs normalises a list of SMS log entries.
func (n *Normaliser) SMSLogs(raw any) []domain.SMSLog {
	items := asList(decode(raw))
	logs := make([]domain.SMSLog, 0, len(items))
	for _, item := range items {
		logs = append(logs, n.smsLog(asObject(item)))
	}
	return logs
}

func (n *Normaliser) smsLog(m map[string]any) domain.SMSLog {
	id, ok := asID(m["id"])
	if !ok {
		id = n.LocalID("sms")
	}
	return domain.SMSLog{
		ID:          id,
		StudentID:   asString(m["studentId"], ""),
		PhoneNumber: asString(m["phoneNumber"], ""),
		Message:     asString(m["message"], ""),
		Type:        smsType(m["type"]),
		SentAt:      n.timeOr(m["sentAt"]),
		Status:      smsStatus(m["status"]),
	}
}

func smsType(v any) domain.SMSType {
	switch t := domain.SMSType(asString(v, "")); t {
	case domain.SMSTypeWelcome, domain.SMSTypeProgress, domain.SMSTypeAchievement, domain.SMSTypeWeekly:
		return t
	default:
		return domain.SMSTypeProgress
	}
}

func smsStatus(v any) domain.SMSStatus {
	switch s := domain.SMSStatus(asString(v, "")); s {
	case domain.SMSStatusPending, domain.SMSStatusSent, domain.SMSStatusFailed:
		return s
	default:
		return domain.SMSStatusPending
	}
}

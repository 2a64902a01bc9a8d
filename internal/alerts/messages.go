package alerts

import (
	"strings"
)

// Urgency is the patient-facing reading of an alert severity.
type Urgency string

const (
	UrgencyActNow          Urgency = "act_now"
	UrgencyUrgent          Urgency = "urgent"
	UrgencyAttentionNeeded Urgency = "attention_needed"
	UrgencyForYourInfo     Urgency = "for_your_info"
)

func UrgencyOf(severity string) Urgency {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "emergency":
		return UrgencyActNow
	case "critical":
		return UrgencyUrgent
	case "warning":
		return UrgencyAttentionNeeded
	}
	return UrgencyForYourInfo
}

// Description is a plain-language rendering of an alert.
type Description struct {
	Message     string   `json:"friendly_message"`
	ActionSteps []string `json:"action_steps"`
	Urgency     Urgency  `json:"urgency_level"`
}

type template struct {
	message string
	actions []string
}

var defaultTemplate = template{
	message: "We noticed something unusual in your recent readings. Please check in with how you're feeling.",
	actions: []string{
		"Take a moment to rest",
		"Check how you're feeling",
		"Contact your doctor if concerned",
	},
}

var templates = map[string]template{
	"high_heart_rate": {
		message: "your heart rate is higher than usual ({value}). This could mean your body is working harder than it should.",
		actions: []string{
			"Stop any physical activity and sit down",
			"Take slow, deep breaths for 2 minutes",
			"Drink some water",
			"If it doesn't come down in 10 minutes, call your doctor",
		},
	},
	"low_heart_rate": {
		message: "your heart rate is lower than expected ({value}). This might mean your body needs attention.",
		actions: []string{
			"Sit or lie down if you feel dizzy",
			"Avoid sudden movements",
			"Contact your healthcare provider if you feel unwell",
		},
	},
	"low_spo2": {
		message: "your blood oxygen level has dropped ({value}). This means your body may not be getting enough oxygen.",
		actions: []string{
			"Sit upright to help your breathing",
			"Take slow, deep breaths",
			"If you feel short of breath or dizzy, seek medical help immediately",
		},
	},
	"high_blood_pressure": {
		message: "your blood pressure reading is elevated ({value}). This is worth keeping an eye on.",
		actions: []string{
			"Sit down and relax for 5 minutes",
			"Avoid caffeine and salty foods",
			"Take another reading in 15 minutes",
			"If it stays high, contact your healthcare provider",
		},
	},
	"irregular_rhythm": {
		message: "we detected an irregular pattern in your heartbeat. This may be nothing, but it's worth checking.",
		actions: []string{
			"Stay calm and sit down",
			"Note any symptoms (dizziness, chest pain, shortness of breath)",
			"Contact your healthcare provider to discuss this reading",
		},
	},
	"abnormal_activity": {
		message: "your activity pattern looks different from usual. Your body might need a different approach today.",
		actions: []string{
			"Consider reducing your workout intensity",
			"Listen to your body and rest if you feel tired",
			"Stay hydrated",
		},
	},
}

// Describe renders an alert type in plain language. value is the reading
// that triggered the alert and may be empty; patientName personalizes the
// greeting with the first name.
func Describe(alertType, severity, value, patientName string) Description {
	tpl, ok := templates[alertType]
	if !ok {
		tpl = defaultTemplate
	}

	msg := tpl.message
	if value != "" {
		msg = strings.ReplaceAll(msg, "{value}", value)
	} else {
		msg = strings.ReplaceAll(msg, " ({value})", "")
		msg = strings.ReplaceAll(msg, "{value}", "elevated")
	}
	if first := firstName(patientName); first != "" {
		msg = "Hi " + first + ", " + msg
	} else if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	actions := make([]string, len(tpl.actions))
	copy(actions, tpl.actions)
	return Description{Message: msg, ActionSteps: actions, Urgency: UrgencyOf(severity)}
}

// HumanizeType turns "high_heart_rate" into "high heart rate".
func HumanizeType(alertType string) string {
	return strings.ReplaceAll(alertType, "_", " ")
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

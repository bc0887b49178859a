package engine

import (
	"fmt"
)

type VerdictKind string

var (
	VerdictAllow     VerdictKind = "allow"
	VerdictProfanity VerdictKind = "profanity"
	VerdictSpam      VerdictKind = "spam"
)

// Outcome of policy evaluation for a single message. Produced by rules, consumed once by the engine.
type Verdict struct {
	Kind VerdictKind
	// Strike count after this violation was recorded (profanity only)
	Strikes int
	// The banned word which matched (profanity only)
	Word string
	// Number of messages in the activity window when spam was detected (spam only)
	WindowSize int
}

func Allow() Verdict {
	return Verdict{Kind: VerdictAllow}
}

func Profanity(strikes int, word string) Verdict {
	return Verdict{Kind: VerdictProfanity, Strikes: strikes, Word: word}
}

func Spam(windowSize int) Verdict {
	return Verdict{Kind: VerdictSpam, WindowSize: windowSize}
}

func (v Verdict) IsAllow() bool {
	return v.Kind == VerdictAllow || v.Kind == ""
}

func (v Verdict) String() string {
	switch v.Kind {
	case VerdictProfanity:
		return fmt.Sprintf("profanity(strikes=%d)", v.Strikes)
	case VerdictSpam:
		return fmt.Sprintf("spam(window=%d)", v.WindowSize)
	default:
		return string(VerdictAllow)
	}
}

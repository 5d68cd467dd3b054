package tutor

import (
	"fmt"
	"strings"

	"codesathi/internal/models"
)

// SystemInstruction sets Sathi's teaching style for every request.
const SystemInstruction = `You are Sathi, a friendly, encouraging, and safe AI coding tutor for children (ages 7-14).
Help them learn to code using the Socratic method.
Never give the direct answer immediately. Guide them with hints and questions instead.
Use emojis to be engaging.
If the learner is stuck, offer a scaffolded hint: one small piece of the puzzle.
Keep responses short, under 3 sentences.
Supported tracks: Scratch, Python, JavaScript.
All advice must be child-safe and positive.`

// SelfCheckFollowUp is sent as the second turn of a self-checked answer.
const SelfCheckFollowUp = "Are you sure? Double-check and give your best final answer for the learner."

// Greeting is the first message the chat panel shows.
const Greeting = "Hi! I'm Sathi! 👋 I'm here to help you code. Stuck? Just ask!"

// Fallback replies used when the model cannot answer.
const (
	FallbackNotConfigured = "Oops! My brain isn't connected right now. Ask a grown-up to check the AI settings."
	FallbackChatError     = "I had a little glitch! Can you ask that again?"
	FallbackEmpty         = "I'm thinking..."
	FallbackHintAsleep    = "AI is sleeping right now. Try the lesson hints for now!"
	FallbackHintError     = "Sathi hit a snag reaching the AI. Please try again soon."
	FallbackHintEmpty     = "I had trouble getting a response. Please try again."
)

func chatPrompt(lessonContext, message string) string {
	if lessonContext == "" {
		return message
	}
	return fmt.Sprintf("Current Context/Lesson: %s. Student Question: %s", lessonContext, message)
}

func hintPrompt(req HintRequest) string {
	track := string(req.Track)
	if track == "" {
		track = "general"
	}
	var b strings.Builder
	b.WriteString("You are Sathi, a friendly coding coach for kids.\n")
	fmt.Fprintf(&b, "Intent: %s\n", req.Intent)
	fmt.Fprintf(&b, "Track: %s\n", track)
	if req.AgeGroup != "" {
		fmt.Fprintf(&b, "Age group: %s\n", req.AgeGroup)
	}
	fmt.Fprintf(&b, "Context: %s\n", req.Context)
	fmt.Fprintf(&b, "User message: %s\n", req.Message)
	b.WriteString("Keep answers short, encouraging, and kid-friendly.")
	return b.String()
}

func welcomePrompt(p models.Profile, track models.Track) string {
	return fmt.Sprintf(`Create a very short, high-energy welcome message for a new coding student named %s, who is in the age group %s.
Their interests are: %s.
Their experience level is: %s.
We recommend the %s track for them. Tell them why it fits.
Format: "Welcome [Name]! 🚀 Since you like [Interest], I think you'll love [Track]..."
Keep it under 50 words.`,
		p.Name, p.AgeGroup, strings.Join(p.Goals, ", "), p.Experience, track.Label())
}

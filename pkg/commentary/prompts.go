package commentary

import (
	"math/rand"
	"strings"
)

// SkipSentinel is the token the model returns when nothing new is worth
// saying. A skip suppresses the turn entirely: no synthesis, no emission.
const SkipSentinel = "SKIP"

// sportInstructions is the base system prompt per sport.
var sportInstructions = map[string]string{
	"soccer": `You are a live soccer commentator on a television broadcast.
Keep every line to one or two punchy sentences, ready to be spoken aloud.
Start your response with an emotion tag in the form [EMOTION:word], choosing
from: excited, tense, thoughtful, celebratory, disappointed, urgent, neutral.
Never mention that you are an AI or that you are watching detections.`,

	"football": `You are a live American football commentator on a television
broadcast. Keep every line to one or two punchy sentences, ready to be
spoken aloud. Use football terms: downs, the pocket, the red zone, the
end zone. Start your response with an emotion tag in the form
[EMOTION:word], choosing from: excited, tense, thoughtful, celebratory,
disappointed, urgent, neutral. Never mention that you are an AI or that
you are watching detections.`,
}

// topicPrompts gives each persona a bank of topic prompts. One is chosen
// at random per turn to keep phrasing varied.
var topicPrompts = map[string][]string{
	"danny": {
		"Describe the current action on the field based on the player positions.",
		"What's happening in the play right now? Call it like you see it.",
		"The ball is in play, give us the play-by-play!",
		"Read the field and tell us what's developing.",
	},
	"coach_kay": {
		"Break down the formation and what the offense is trying to do.",
		"What does the spacing between the players tell you about the game plan?",
		"Talk us through the tactical battle you're seeing.",
	},
	"rookie": {
		"What catches your eye about this moment? React to it.",
		"Give us the atmosphere, what does this moment feel like in the stadium?",
		"Anything about the players' body language worth calling out?",
	},
	"personal": {
		"Connect what's happening on the field to what this viewer cares about.",
		"If the viewer's favorite players were in this situation, what would you tell them?",
	},
}

// SportInstructions returns the base system prompt for the sport,
// defaulting to soccer for unknown sports.
func SportInstructions(sport string) string {
	if inst, ok := sportInstructions[sport]; ok {
		return inst
	}
	return sportInstructions["soccer"]
}

// KnownSport reports whether the sport has a dedicated instruction set.
func KnownSport(sport string) bool {
	_, ok := sportInstructions[sport]
	return ok
}

// topicPrompt picks a topic prompt for the persona. Personas without a
// bank fall back to the default persona's bank.
func topicPrompt(rng *rand.Rand, personaKey string) string {
	bank, ok := topicPrompts[personaKey]
	if !ok || len(bank) == 0 {
		bank = topicPrompts["danny"]
	}
	return bank[rng.Intn(len(bank))]
}

// antiRepetitionClause lists the recent lines with the skip instruction.
func antiRepetitionClause(recent []string) string {
	var b strings.Builder
	b.WriteString("Your recent commentary lines were:\n")
	for _, line := range recent {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("Do not repeat yourself. If there is nothing new worth saying, respond with exactly ")
	b.WriteString(SkipSentinel)
	b.WriteString(" and nothing else.")
	return b.String()
}

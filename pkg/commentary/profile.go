package commentary

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PreritO/cartesia-hackathon/pkg/llm"
	"github.com/PreritO/cartesia-hackathon/pkg/persona"
	"github.com/PreritO/cartesia-hackathon/pkg/tts"
)

// Pre-game onboarding: Danny chats with a new viewer to build their
// profile before the broadcast starts.
const profileChatSystem = `You are Danny, the lead play-by-play commentator for our AI sports broadcast. ` +
	`Right now the game hasn't started yet -- you're doing a quick pre-game chat with ` +
	`a new viewer to learn about them so you can personalize the commentary.

Be warm, natural, and brief (1-2 sentences per response). You're a sports buddy, ` +
	`not a form. Weave questions in conversationally -- don't number them or make it ` +
	`feel like an interview checklist.

You need to find out:
1. The viewer's first name
2. Their favorite team (if any -- it's okay if they don't have one)
3. Their experience level with the sport (beginner, casual, knowledgeable, or expert)
4. Any favorite players they love watching
5. How they want the commentary style -- balanced/objective, a bit biased toward ` +
	`their team, or full homer mode

After you have gathered enough information (usually 4-5 exchanges), output your ` +
	`final message that wraps up the chat AND include a JSON block in exactly this format ` +
	`at the END of your message:

[PROFILE_COMPLETE]{"name": "...", "favorite_team": "...", "experience": "beginner|casual|knowledgeable|expert", "favorite_players": ["..."], "style": "balanced|moderate|homer"}[/PROFILE_COMPLETE]

If the viewer skips a question or says they don't have a preference, use sensible ` +
	`defaults (no team, casual experience, balanced style, empty players list). ` +
	`Do NOT output the [PROFILE_COMPLETE] block until you have asked enough questions.

Keep it short and fun -- you're excited for the game!`

const extractProfileSystem = `Extract a viewer profile from this conversation transcript between a sports ` +
	`commentator (Danny) and a viewer. Return ONLY a JSON object with these fields:

{"name": "string", "favorite_team": "string or null", "experience": "beginner|casual|knowledgeable|expert", "favorite_players": ["string array"], "style": "balanced|moderate|homer"}

If any field wasn't mentioned, use defaults: name="Fan", favorite_team=null, ` +
	`experience="casual", favorite_players=[], style="balanced".

Return ONLY the JSON, no other text.`

var (
	profileCompleteRE = regexp.MustCompile(`(?s)\[PROFILE_COMPLETE\]\s*(\{.*?\})\s*\[/PROFILE_COMPLETE\]`)
	jsonObjectRE      = regexp.MustCompile(`(?s)\{.*\}`)
)

var experienceToExpertise = map[string]int{
	"beginner":      15,
	"casual":        40,
	"knowledgeable": 65,
	"expert":        90,
}

var styleToHotTake = map[string]int{
	"balanced": 25,
	"moderate": 50,
	"homer":    80,
}

// ChatMessage is one turn of the onboarding conversation.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// ChatResult is Danny's next onboarding response. Profile is non-nil only
// once Done.
type ChatResult struct {
	Text    string
	Audio   []byte
	Done    bool
	Profile *persona.Profile
}

// ProfileChat advances the onboarding conversation by one turn. When the
// model signals completion the extracted profile rides along; synthesis
// failures drop the audio but keep the text.
func ProfileChat(ctx context.Context, llmProvider llm.Provider, ttsProvider tts.Provider, voiceID string, messages []ChatMessage) (*ChatResult, error) {
	resp, err := llmProvider.Generate(ctx, &llm.Request{
		System:    profileChatSystem,
		Prompt:    renderChat(messages),
		MaxTokens: 300,
	})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(resp.Text)
	result := &ChatResult{
		Text: strings.TrimSpace(profileCompleteRE.ReplaceAllString(raw, "")),
	}

	if m := profileCompleteRE.FindStringSubmatch(raw); m != nil {
		result.Done = true
		result.Profile = buildProfile([]byte(m[1]))
	}

	if result.Text != "" && ttsProvider != nil && voiceID != "" {
		audio, err := ttsProvider.Synthesize(ctx, &tts.Request{
			Text:    result.Text,
			VoiceID: voiceID,
			Speed:   1.1,
		})
		if err == nil {
			result.Audio = audio.Audio
		}
	}
	return result, nil
}

// ExtractProfile derives a structured profile from a free-form
// conversation transcript.
func ExtractProfile(ctx context.Context, llmProvider llm.Provider, transcript string) (*persona.Profile, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("empty transcript")
	}

	resp, err := llmProvider.Generate(ctx, &llm.Request{
		System:    extractProfileSystem,
		Prompt:    transcript,
		MaxTokens: 200,
	})
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(resp.Text)
	if !json.Valid([]byte(raw)) {
		// The model sometimes wraps the JSON in prose.
		if m := jsonObjectRE.FindString(raw); m != "" {
			raw = m
		}
	}
	return buildProfile([]byte(raw)), nil
}

// renderChat flattens the conversation for the single-prompt Generate
// call. An empty history seeds the greeting.
func renderChat(messages []ChatMessage) string {
	if len(messages) == 0 {
		return "Viewer: Hey! I just tuned in.\n\nReply with Danny's next message only."
	}

	var b strings.Builder
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}
		switch msg.Role {
		case "assistant":
			b.WriteString("Danny: ")
		default:
			b.WriteString("Viewer: ")
		}
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nReply with Danny's next message only.")
	return b.String()
}

// buildProfile maps the model's extraction JSON onto a Profile,
// defaulting every absent or unrecognized field.
func buildProfile(raw []byte) *persona.Profile {
	var extracted struct {
		Name            string   `json:"name"`
		FavoriteTeam    string   `json:"favorite_team"`
		Experience      string   `json:"experience"`
		FavoritePlayers []string `json:"favorite_players"`
		Style           string   `json:"style"`
	}
	// Unparseable extraction degrades to the defaults below.
	_ = json.Unmarshal(raw, &extracted)

	profile := &persona.Profile{
		Name:            extracted.Name,
		FavoriteTeam:    extracted.FavoriteTeam,
		FavoritePlayers: extracted.FavoritePlayers,
		ExpertiseSlider: experienceToExpertise["casual"],
		HotTakeSlider:   styleToHotTake["balanced"],
	}
	if profile.Name == "" {
		profile.Name = "Fan"
	}
	if v, ok := experienceToExpertise[strings.ToLower(extracted.Experience)]; ok {
		profile.ExpertiseSlider = v
	}
	if v, ok := styleToHotTake[strings.ToLower(extracted.Style)]; ok {
		profile.HotTakeSlider = v
	}
	return profile
}

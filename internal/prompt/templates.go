// Package prompt selects and renders the text templates sent to the
// model, together with the content-safety policy matching the game's
// category and intensity.
package prompt

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"showdown/internal/ai"
	"showdown/internal/game"
)

// Request carries the game context a template is rendered from.
type Request struct {
	Player          game.Player
	Others          []game.Player
	Category        game.Category
	Intensity       int
	Kind            game.PromptKind
	PreviousPrompts []string
}

type Variant int

const (
	VariantStandard Variant = iota
	VariantExtreme
)

// SelectVariant picks the extreme template only for the adult category
// at maximum intensity; kids and teens never see it.
func SelectVariant(category game.Category, intensity int) Variant {
	if category == game.CategoryAdult && intensity == game.MaxIntensity {
		return VariantExtreme
	}
	return VariantStandard
}

// SafetyFor returns the content-safety policy for a category and
// intensity: kids strictest, teens medium, 18+ most permissive short of
// the extreme policy used at maximum intensity.
func SafetyFor(category game.Category, intensity int) []ai.SafetySetting {
	if SelectVariant(category, intensity) == VariantExtreme {
		return []ai.SafetySetting{
			{Category: ai.HarmHateSpeech, Threshold: ai.BlockNone},
			{Category: ai.HarmSexuallyExplicit, Threshold: ai.BlockNone},
			{Category: ai.HarmDangerousContent, Threshold: ai.BlockNone},
			{Category: ai.HarmHarassment, Threshold: ai.BlockNone},
		}
	}
	switch category {
	case game.CategoryTeens:
		return []ai.SafetySetting{
			{Category: ai.HarmHateSpeech, Threshold: ai.BlockMediumAndAbove},
			{Category: ai.HarmSexuallyExplicit, Threshold: ai.BlockOnlyHigh},
			{Category: ai.HarmDangerousContent, Threshold: ai.BlockOnlyHigh},
			{Category: ai.HarmHarassment, Threshold: ai.BlockMediumAndAbove},
		}
	case game.CategoryAdult:
		return []ai.SafetySetting{
			{Category: ai.HarmHateSpeech, Threshold: ai.BlockOnlyHigh},
			{Category: ai.HarmSexuallyExplicit, Threshold: ai.BlockNone},
			{Category: ai.HarmDangerousContent, Threshold: ai.BlockNone},
			{Category: ai.HarmHarassment, Threshold: ai.BlockOnlyHigh},
		}
	default: // kids
		return []ai.SafetySetting{
			{Category: ai.HarmHateSpeech, Threshold: ai.BlockMediumAndAbove},
			{Category: ai.HarmSexuallyExplicit, Threshold: ai.BlockMediumAndAbove},
			{Category: ai.HarmDangerousContent, Threshold: ai.BlockMediumAndAbove},
			{Category: ai.HarmHarassment, Threshold: ai.BlockMediumAndAbove},
		}
	}
}

// PointsFor returns the fixed point value for truth and dare prompts.
// Wildcard points are rolled separately.
func PointsFor(kind game.PromptKind) int {
	switch kind {
	case game.KindTruth:
		return game.TruthPoints
	case game.KindDare:
		return game.DarePoints
	default:
		return 0
	}
}

// RollWildcardPoints assigns a random point value in the wildcard range.
func RollWildcardPoints(r *rand.Rand) int {
	return game.WildcardMinPoints + r.Intn(game.WildcardMaxPoints-game.WildcardMinPoints+1)
}

var timeMention = regexp.MustCompile(`(?i)second|minute`)

// SanitizeTimer discards a timer unless the prompt text itself mentions
// a duration; timers are only honored when the task names one.
func SanitizeTimer(text string, timerSeconds int) int {
	if timerSeconds > 0 && timeMention.MatchString(text) {
		return timerSeconds
	}
	return 0
}

const onTheSpotRule = `**Important Rule:** For 'dare' prompts, the task must be something the player can do on the spot. Strongly prefer tasks that use only the player's body. If an object is required, it must be a very common household item (like a phone, a spoon, a piece of paper). Do not require items that are not easily available.`

const wildcardOnTheSpotRule = `**Important Rule:** The challenge must be something the player can do on the spot. Strongly prefer tasks that use only the player's body. If an object is required, it must be a very common household item (like a phone, a spoon, a piece of paper). Do not require items that are not easily available.`

// Render produces the full prompt text for one generation request.
func Render(req Request) string {
	var sb strings.Builder
	variant := SelectVariant(req.Category, req.Intensity)

	switch {
	case req.Kind == game.KindWildcard && variant == VariantExtreme:
		sb.WriteString(fmt.Sprintf(`You are an AI for an adults-only party game. Your goal is to generate a single, very short (1-2 sentences), truly extreme, wild, and potentially shocking "wildcard" challenge for %s. The intensity is set to the maximum (5/5), so do not hold back. The challenge should be creative and unexpected, often involving other players in a funny or awkward way. Focus on testing social norms or creating a memorable, edgy moment.`, req.Player.Name))
		sb.WriteString("\n\n" + wildcardOnTheSpotRule + "\n\n")
		sb.WriteString("The challenge must be appropriate for the '18+' category at its most intense.\nDo not repeat any of the previous challenges. Focus on being edgy and surprising.\n")
	case req.Kind == game.KindWildcard:
		sb.WriteString(fmt.Sprintf(`You are an AI for a party game. Your primary goal is to generate a single, short (1-2 sentences), fun, and unexpected "wildcard" challenge for %s.`, req.Player.Name))
		sb.WriteString("\n\n" + wildcardOnTheSpotRule + "\n\n")
		sb.WriteString(fmt.Sprintf("The challenge must be appropriate for the '%s' category.\nDo not repeat any of the previous challenges. Focus on being fun and surprising.\n", req.Category))
	case variant == VariantExtreme:
		sb.WriteString(fmt.Sprintf(`You are an AI for an adults-only Truth or Dare game. The intensity is set to the maximum (5/5). Your goal is to generate a very short (1-2 sentences), truly extreme, wild, and potentially shocking '%s' question for %s. Do not hold back. The best prompts test social boundaries, reveal funny or embarrassing secrets, or create hilarious and awkward interactions between players. Be edgy and push the limits of comfort, but stay within the realm of a party game. Involve other players in the dares whenever possible.`, req.Kind, req.Player.Name))
		sb.WriteString("\n\n" + onTheSpotRule + "\n\n")
		sb.WriteString("The question must be appropriate for the '18+' category at its most intense level.\nDo not repeat any of the previous prompts. Focus on being shocking and edgy.\n")
	default:
		sb.WriteString(fmt.Sprintf(`You are an AI for a Truth or Dare game. Your primary goal is to generate a very short (1-2 sentences), creative, and engaging '%s' question for %s.`, req.Kind, req.Player.Name))
		sb.WriteString("\n\n" + onTheSpotRule + "\n\n")
		sb.WriteString(fmt.Sprintf("The question must be appropriate for the '%s' category.\nDo not repeat any of the previous prompts. Focus on being fun and surprising.\n", req.Category))
	}

	sb.WriteString("\n**Game Details:**\n")
	categoryLine := string(req.Category)
	if variant == VariantExtreme {
		categoryLine += " (Maximum Intensity)"
	}
	sb.WriteString(fmt.Sprintf("-   **Category:** %s\n", categoryLine))
	sb.WriteString(fmt.Sprintf("-   **Current Player:** %s (%s)\n", req.Player.Name, req.Player.Gender))
	sb.WriteString("-   **Other Players:**\n")
	for _, p := range req.Others {
		sb.WriteString(fmt.Sprintf("    -   %s (%s)\n", p.Name, p.Gender))
	}
	if len(req.PreviousPrompts) > 0 {
		sb.WriteString("-   **Do not repeat these previous prompts:**\n")
		for _, prev := range req.PreviousPrompts {
			sb.WriteString(fmt.Sprintf("    -   %q\n", prev))
		}
	}
	return sb.String()
}

package prompt

import (
	"math/rand"
	"strings"
	"testing"

	"showdown/internal/ai"
	"showdown/internal/game"
)

func TestVariantDispatch(t *testing.T) {
	if SelectVariant(game.CategoryAdult, 5) != VariantExtreme {
		t.Fatal("18+ at intensity 5 must select the extreme template")
	}
	if SelectVariant(game.CategoryAdult, 4) != VariantStandard {
		t.Fatal("18+ below max intensity must stay on the standard template")
	}
	for intensity := 1; intensity <= game.MaxIntensity; intensity++ {
		if SelectVariant(game.CategoryKids, intensity) != VariantStandard {
			t.Fatalf("kids must never select the extreme template (intensity %d)", intensity)
		}
		if SelectVariant(game.CategoryTeens, intensity) != VariantStandard {
			t.Fatalf("teens must never select the extreme template (intensity %d)", intensity)
		}
	}
}

func TestSafetyPolicyScalesWithCategory(t *testing.T) {
	kids := SafetyFor(game.CategoryKids, 3)
	for _, s := range kids {
		if s.Threshold != ai.BlockMediumAndAbove {
			t.Fatalf("kids policy should block medium and above everywhere, got %s for %s", s.Threshold, s.Category)
		}
	}

	teens := thresholds(SafetyFor(game.CategoryTeens, 3))
	if teens[ai.HarmSexuallyExplicit] != ai.BlockOnlyHigh || teens[ai.HarmHateSpeech] != ai.BlockMediumAndAbove {
		t.Fatalf("teens policy wrong: %v", teens)
	}

	adult := thresholds(SafetyFor(game.CategoryAdult, 3))
	if adult[ai.HarmSexuallyExplicit] != ai.BlockNone || adult[ai.HarmHateSpeech] != ai.BlockOnlyHigh {
		t.Fatalf("adult policy wrong: %v", adult)
	}

	extreme := SafetyFor(game.CategoryAdult, 5)
	for _, s := range extreme {
		if s.Threshold != ai.BlockNone {
			t.Fatalf("extreme policy should block nothing, got %s for %s", s.Threshold, s.Category)
		}
	}
}

func thresholds(settings []ai.SafetySetting) map[ai.HarmCategory]ai.Threshold {
	out := make(map[ai.HarmCategory]ai.Threshold)
	for _, s := range settings {
		out[s.Category] = s.Threshold
	}
	return out
}

func TestFixedPointValues(t *testing.T) {
	if PointsFor(game.KindTruth) != 5 {
		t.Fatalf("truth must be worth 5, got %d", PointsFor(game.KindTruth))
	}
	if PointsFor(game.KindDare) != 10 {
		t.Fatalf("dare must be worth 10, got %d", PointsFor(game.KindDare))
	}
	if PointsFor(game.KindWildcard) != 0 {
		t.Fatal("wildcard points are rolled, not fixed")
	}
}

func TestWildcardPointsWithinRange(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		p := RollWildcardPoints(r)
		if p < game.WildcardMinPoints || p > game.WildcardMaxPoints {
			t.Fatalf("wildcard points %d out of range", p)
		}
		seen[p] = true
	}
	if !seen[game.WildcardMinPoints] || !seen[game.WildcardMaxPoints] {
		t.Fatal("both range endpoints should be reachable")
	}
}

func TestTimerKeptOnlyWithDurationMention(t *testing.T) {
	if got := SanitizeTimer("Tell a joke", 30); got != 0 {
		t.Fatalf("timer without a duration mention must be stripped, got %d", got)
	}
	if got := SanitizeTimer("Plank for 30 seconds", 30); got != 30 {
		t.Fatalf("timer with a duration mention must be kept, got %d", got)
	}
	if got := SanitizeTimer("Hold your breath for one MINUTE", 60); got != 60 {
		t.Fatalf("the check is case-insensitive, got %d", got)
	}
	if got := SanitizeTimer("Plank for 30 seconds", 0); got != 0 {
		t.Fatal("absent timers stay absent")
	}
}

func renderRequest(category game.Category, intensity int, kind game.PromptKind) Request {
	return Request{
		Player:   game.Player{Name: "Alice", Gender: game.GenderFemale},
		Others:   []game.Player{{Name: "Bob", Gender: game.GenderMale}},
		Category: category,
		Intensity: intensity,
		Kind:     kind,
		PreviousPrompts: []string{"Tell a joke"},
	}
}

func TestRenderIncludesGameContext(t *testing.T) {
	out := Render(renderRequest(game.CategoryTeens, 1, game.KindTruth))

	for _, want := range []string{
		"'truth' question for Alice",
		"Current Player:** Alice (female)",
		"Bob (male)",
		"'teens' category",
		`"Tell a joke"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered prompt missing %q:\n%s", want, out)
		}
	}
}

func TestRenderExtremeVariant(t *testing.T) {
	out := Render(renderRequest(game.CategoryAdult, 5, game.KindDare))
	if !strings.Contains(out, "Do not hold back") {
		t.Fatalf("extreme template expected:\n%s", out)
	}
	if !strings.Contains(out, "Maximum Intensity") {
		t.Fatal("extreme render should flag maximum intensity")
	}

	standard := Render(renderRequest(game.CategoryAdult, 4, game.KindDare))
	if strings.Contains(standard, "Do not hold back") {
		t.Fatal("intensity 4 must not use the extreme template")
	}
}

func TestRenderWildcardVariants(t *testing.T) {
	out := Render(renderRequest(game.CategoryKids, 1, game.KindWildcard))
	if !strings.Contains(out, `"wildcard" challenge for Alice`) {
		t.Fatalf("wildcard template expected:\n%s", out)
	}

	extreme := Render(renderRequest(game.CategoryAdult, 5, game.KindWildcard))
	if !strings.Contains(extreme, "adults-only party game") {
		t.Fatalf("extreme wildcard template expected:\n%s", extreme)
	}
}

func TestFallbackCoversAllCategories(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	kinds := []game.PromptKind{game.KindTruth, game.KindDare, game.KindWildcard}

	for _, kind := range kinds {
		for _, cat := range []game.Category{game.CategoryKids, game.CategoryTeens} {
			if Fallback(cat, 1, kind, r) == "" {
				t.Fatalf("no fallback for %s/%s", cat, kind)
			}
		}
		for intensity := 1; intensity <= game.MaxIntensity; intensity++ {
			if Fallback(game.CategoryAdult, intensity, kind, r) == "" {
				t.Fatalf("no adult fallback at intensity %d for %s", intensity, kind)
			}
		}
	}
}

func TestFallbackClampsIntensity(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	if Fallback(game.CategoryAdult, 0, game.KindTruth, r) == "" {
		t.Fatal("out-of-range intensity should clamp, not fail")
	}
	if Fallback(game.CategoryAdult, 9, game.KindTruth, r) == "" {
		t.Fatal("out-of-range intensity should clamp, not fail")
	}
}

package prompt

import (
	"math/rand"

	"showdown/internal/game"
)

// Static prompt tables used when no AI provider is configured.
// Adult prompts are keyed by intensity level.

var kidsPrompts = map[game.PromptKind][]string{
	game.KindTruth: {
		"If you could have any superpower, what would it be and why?",
		"What's the funniest thing you've ever seen?",
		"What is your favorite food that your parents cook?",
		"If you could be any animal, what would you be?",
		"What's your biggest secret that you've never told anyone?",
	},
	game.KindDare: {
		"Do your best impression of a chicken.",
		"Sing 'Twinkle, Twinkle, Little Star' in a silly voice.",
		"Try to lick your elbow.",
		"Do 10 jumping jacks.",
		"Speak in a robot voice for the next 3 minutes.",
	},
}

var teensPrompts = map[game.PromptKind][]string{
	game.KindTruth: {
		"What's the most embarrassing thing you've ever done in school?",
		"Who is your secret crush?",
		"What's a trend you followed that you now regret?",
		"What's the last lie you told?",
		"What's something you're afraid to tell your parents?",
	},
	game.KindDare: {
		"Let someone in the group post a silly status on your social media.",
		"Do the worm dance move.",
		"Talk with a funny accent for the rest of the game.",
		"Try to juggle three items of the group's choice.",
		"Wear socks on your hands for the next two rounds.",
	},
}

var adultTruths = map[int][]string{
	1: {"What's a weird food combination you secretly enjoy?", "What's the most childish thing you still do?", "What's a movie that made you cry?"},
	2: {"What's the biggest lie you've ever told a partner?", "Have you ever re-gifted a present?", "What's your most embarrassing drunk story?"},
	3: {"What's something you've done that you hope your parents never find out about?", "Who was your first real love?", "What's the most trouble you've ever been in?"},
	4: {"Describe your worst date ever.", "What's a secret you've kept from everyone in this room?", "What's the craziest thing you've done for love?"},
	5: {"What's your biggest fantasy?", "Have you ever been in a situation you couldn't get out of?", "What is the most scandalous thing on your bucket list?"},
}

var adultDares = map[int][]string{
	1: {"Imitate another player until the next turn.", "Eat a spoonful of a condiment from the fridge.", "Talk in rhymes for the next 5 minutes."},
	2: {"Send a text to a random contact saying 'I know your secret.'", "Let the group give you a new hairstyle.", "Do your best seductive dance for 30 seconds."},
	3: {"Call a friend and try to convince them you've won the lottery.", "Post an old, embarrassing photo of yourself on social media.", "Let another player draw a mustache on your face with a pen."},
	4: {"Remove an item of clothing.", "Lick a small amount of something off another player's face (like a drop of water).", "Give a lap dance to the person of your choice."},
	5: {"Send a scandalous photo to your partner or a friend.", "Kiss the person to your left.", "For the rest of the game, every time you talk, you have to start with 'In my expert opinion...'"},
}

// Fallback draws a prompt from the static tables. Wildcards fall back
// to the dare table, the closest open-ended task set.
func Fallback(category game.Category, intensity int, kind game.PromptKind, r *rand.Rand) string {
	if kind == game.KindWildcard {
		kind = game.KindDare
	}
	var pool []string
	switch category {
	case game.CategoryTeens:
		pool = teensPrompts[kind]
	case game.CategoryAdult:
		if intensity < 1 {
			intensity = 1
		}
		if intensity > game.MaxIntensity {
			intensity = game.MaxIntensity
		}
		if kind == game.KindTruth {
			pool = adultTruths[intensity]
		} else {
			pool = adultDares[intensity]
		}
	default:
		pool = kidsPrompts[kind]
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[r.Intn(len(pool))]
}

package telemetry

import "github.com/ishikisiko/match-telemetry/models"

// GameTitle describes a title the synthesizer can produce matches for.
type GameTitle struct {
	Name     string
	Maps     []string
	WinScore int
}

var gameCatalog = []GameTitle{
	{Name: "Valorant", Maps: []string{"Ascent", "Bind", "Haven", "Split", "Lotus", "Sunset"}, WinScore: 13},
	{Name: "Counter-Strike 2", Maps: []string{"Mirage", "Inferno", "Nuke", "Ancient", "Anubis"}, WinScore: 13},
	{Name: "Rainbow Six Siege", Maps: []string{"Bank", "Border", "Clubhouse", "Oregon"}, WinScore: 7},
}

var teamPool = []string{
	"Sentinels", "Fnatic", "Team Liquid", "NAVI", "G2 Esports",
	"Paper Rex", "Cloud9", "Vitality", "LOUD", "Heretics",
}

// PlayerPool is the fixed roster events, voice turns and combos draw from.
var PlayerPool = []string{
	"phantom", "vex", "kairo", "nyx", "sable",
	"rook", "juno", "orion", "blitz", "echo",
}

var weaponPool = []string{
	"vandal", "phantom_rifle", "operator", "sheriff", "spectre",
	"ak47", "awp", "deagle", "grenade", "ultimate",
}

var situationPool = []string{
	"entry", "trade", "retake", "post_plant", "clutch", "eco", "anti_eco",
}

var calloutPool = map[models.Sentiment][]string{
	models.SentimentPositive: {
		"nice trade, keep it up",
		"clean round, same setup",
		"great util, they're broken",
		"i've got your back, push",
	},
	models.SentimentNeutral: {
		"two on site b",
		"rotating mid",
		"one lurking main",
		"util down in ten",
		"saving this round",
	},
	models.SentimentNegative: {
		"why did nobody trade",
		"we're throwing this",
		"stop peeking alone",
		"no info again",
	},
}

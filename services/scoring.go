package services

import (
	"math"

	"github.com/alexkachalkov/scootrate/models"
)

// Таблица базовых очков по уровню события: призовые места, финалисты и
// участники.
type levelPoints struct {
	place       map[int]int
	finalist    int
	participant int
}

var pointsTable = map[models.EventLevel]levelPoints{
	models.LevelInternational: {
		place:       map[int]int{1: 400, 2: 300, 3: 220},
		finalist:    100,
		participant: 20,
	},
	models.LevelNational: {
		place:       map[int]int{1: 300, 2: 220, 3: 160},
		finalist:    80,
		participant: 15,
	},
	models.LevelRegional: {
		place:       map[int]int{1: 200, 2: 140, 3: 100},
		finalist:    50,
		participant: 10,
	},
	models.LevelLocal: {
		place:       map[int]int{1: 120, 2: 80, 3: 60},
		finalist:    30,
		participant: 5,
	},
}

// bonusMultiplier повышает очки за массовые события.
func bonusMultiplier(participantsCount *int) float64 {
	if participantsCount == nil {
		return 1.0
	}
	switch {
	case *participantsCount > 60:
		return 1.2
	case *participantsCount > 30:
		return 1.1
	default:
		return 1.0
	}
}

// CalculatePoints считает системные очки результата: базу по месту, статусу
// финалиста или участника, умноженную на бонус за количество участников.
func CalculatePoints(level models.EventLevel, place *int, isFinalist, isParticipant bool, participantsCount *int) int {
	table, ok := pointsTable[level]
	if !ok {
		return 0
	}

	base := 0
	switch {
	case place != nil && table.place[*place] > 0:
		base = table.place[*place]
	case isFinalist:
		base = table.finalist
	case isParticipant:
		base = table.participant
	}

	return int(math.Round(float64(base) * bonusMultiplier(participantsCount)))
}

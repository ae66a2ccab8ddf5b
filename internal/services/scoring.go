package services

import "math"

// Trait categories for the 32-statement questionnaire. OUTCOME statements
// contribute an average only; they never produce a 1-10 score.
const (
	CategoryVision   = "VISION"
	CategoryEffort   = "EFFORT"
	CategorySystems  = "SYSTEMS"
	CategoryPractice = "PRACTICE"
	CategoryAttitude = "ATTITUDE"
	CategoryOutcome  = "OUTCOME"
)

var traitCategories = []string{
	CategoryVision, CategoryEffort, CategorySystems, CategoryPractice, CategoryAttitude,
}

type scoreBand struct {
	lower, upper float64
}

// Production score bands. A statement average of 1-5 maps to the 1-10 score
// whose band contains it; averages at or past the top bound map to 10.
var scoreBands = map[string][]scoreBand{
	CategoryVision: {
		{0, 2.26}, {2.26, 2.7}, {2.7, 3.02}, {3.02, 3.33}, {3.33, 3.52},
		{3.52, 3.84}, {3.84, 4.15}, {4.15, 4.47}, {4.47, 4.79}, {4.79, 5.01},
	},
	CategoryEffort: {
		{0, 2.42}, {2.42, 2.73}, {2.73, 3.04}, {3.04, 3.36}, {3.36, 3.67},
		{3.67, 3.86}, {3.86, 4.17}, {4.17, 4.48}, {4.48, 4.8}, {4.8, 5.01},
	},
	CategorySystems: {
		{0, 2.36}, {2.36, 2.76}, {2.76, 3.16}, {3.16, 3.46}, {3.46, 3.75},
		{3.75, 4.05}, {4.05, 4.35}, {4.35, 4.64}, {4.64, 4.94}, {4.94, 5.01},
	},
	CategoryPractice: {
		{0, 1.74}, {1.74, 2.1}, {2.1, 2.46}, {2.46, 2.74}, {2.74, 3.02},
		{3.02, 3.3}, {3.3, 3.66}, {3.66, 3.94}, {3.94, 4.3}, {4.3, 5.01},
	},
	CategoryAttitude: {
		{0, 2.31}, {2.31, 2.72}, {2.72, 3.01}, {3.01, 3.3}, {3.3, 3.53},
		{3.53, 3.83}, {3.83, 4.06}, {4.06, 4.35}, {4.35, 4.7}, {4.7, 5.01},
	},
}

// QuestionCategories maps each statement id to its trait category.
var QuestionCategories = map[string]string{
	"q1": CategoryVision, "q2": CategorySystems, "q3": CategoryVision,
	"q4": CategorySystems, "q5": CategoryAttitude, "q6": CategoryEffort,
	"q7": CategoryPractice, "q8": CategoryAttitude, "q9": CategoryEffort,
	"q10": CategoryAttitude, "q11": CategorySystems, "q12": CategoryPractice,
	"q13": CategoryAttitude, "q14": CategoryVision, "q15": CategoryPractice,
	"q16": CategoryVision, "q17": CategoryEffort, "q18": CategorySystems,
	"q19": CategoryPractice, "q20": CategoryAttitude, "q21": CategoryEffort,
	"q22": CategorySystems, "q23": CategoryPractice, "q24": CategoryAttitude,
	"q25": CategoryPractice, "q26": CategoryAttitude, "q27": CategoryAttitude,
	"q28": CategoryAttitude, "q29": CategoryVision,
	"q30": CategoryOutcome, "q31": CategoryOutcome, "q32": CategoryOutcome,
}

// ScoreResult carries the per-trait 1-10 scores, the raw statement averages
// and the separately reported outcome average.
type ScoreResult struct {
	Scores           map[string]int
	Overall          int
	CategoryAverages map[string]float64
	OutcomeAverage   float64
}

// ScoreFromAverage converts a 1-5 statement average to the 1-10 score for a
// trait category. Averages at or beyond the top band return 10.
func ScoreFromAverage(average float64, category string) int {
	bands, ok := scoreBands[category]
	if !ok {
		return 0
	}
	for i, band := range bands {
		if average >= band.lower && average < band.upper {
			return i + 1
		}
	}
	return 10
}

// CalculateScores computes the five trait scores plus overall from raw
// statement responses (question id → 1-5 value). A category with no answered
// statements scores 0. Overall is the round-half-to-even mean of the five
// trait scores.
func CalculateScores(responses map[string]int) ScoreResult {
	sums := map[string]float64{}
	counts := map[string]int{}
	for questionID, value := range responses {
		category, ok := QuestionCategories[questionID]
		if !ok {
			continue
		}
		sums[category] += float64(value)
		counts[category]++
	}

	averages := map[string]float64{}
	for category, n := range counts {
		if n > 0 {
			averages[category] = sums[category] / float64(n)
		}
	}

	scores := map[string]int{}
	total := 0
	for _, category := range traitCategories {
		score := 0
		if avg, ok := averages[category]; ok {
			score = ScoreFromAverage(avg, category)
		}
		scores[category] = score
		total += score
	}

	overall := int(math.RoundToEven(float64(total) / float64(len(traitCategories))))

	return ScoreResult{
		Scores:           scores,
		Overall:          overall,
		CategoryAverages: averages,
		OutcomeAverage:   averages[CategoryOutcome],
	}
}

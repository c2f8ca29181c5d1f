package quiz

import "github.com/samvad-hq/samvad-wiki-quiz/internal/domain"

const emergencySummaryChars = 200

// MockResult is the fixed quiz returned for text without usable sentences.
func MockResult() domain.QuizResult {
	return domain.QuizResult{
		Summary: "This is a placeholder summary. The article did not contain enough readable sentences to build a quiz.",
		Entities: domain.EntityBundle{
			People:        []string{"Mock Person"},
			Organizations: []string{"Mock Org"},
			Locations:     []string{"Mock Location"},
		},
		Sections: []string{"Introduction", "History"},
		Questions: []domain.QuizQuestion{
			{
				Question:    "What is the mock question?",
				Options:     []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:      "Option A",
				Difficulty:  domain.DifficultyEasy,
				Explanation: "Mock explanation.",
			},
			{
				Question:    "Another mock question?",
				Options:     []string{"Choice 1", "Choice 2", "Choice 3", "Choice 4"},
				Answer:      "Choice 2",
				Difficulty:  domain.DifficultyMedium,
				Explanation: "Another mock explanation.",
			},
		},
		RelatedTopics: []string{"Topic 1", "Topic 2"},
	}
}

// EmergencyResult is substituted when synthesis misses its deadline. It only looks at the
// first 200 characters of text.
func EmergencyResult(text string) domain.QuizResult {
	return domain.QuizResult{
		Summary:  cut(text, emergencySummaryChars) + ellipsis,
		Entities: domain.EmptyEntities(),
		Sections: []string{},
		Questions: []domain.QuizQuestion{{
			Question:    "What is the main topic of this article?",
			Options:     []string{"The topic described", "Option B", "Option C", "Option D"},
			Answer:      "The topic described",
			Difficulty:  domain.DifficultyEasy,
			Explanation: "This article discusses the main topic.",
		}},
		RelatedTopics: []string{},
	}
}

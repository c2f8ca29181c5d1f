package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
)

const (
	minQuestions = 3
	maxQuestions = 7

	subjectWindowChars = 150
	descriptionWords   = 12
	descriptionChars   = 80
	phraseWords        = 10
	phraseChars        = 70
	personScanLimit    = 10
	conceptMinChars    = 50
	minSummaryChars    = 50
	longSummaryChars   = 500
	shortSummaryChars  = 400
)

var (
	subjectPattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`)
	yearPattern    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// Synthesizer builds quizzes from article text. The zero value is ready to use.
type Synthesizer struct{}

// Synthesize implements the pipeline synthesizer contract.
func (Synthesizer) Synthesize(text string) domain.QuizResult {
	return Synthesize(text)
}

// Synthesize derives a summary, entities and 3 to 7 multiple-choice questions from text.
// Output depends only on text. Text without sentences longer than 20 characters yields
// MockResult.
func Synthesize(text string) domain.QuizResult {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return MockResult()
	}

	summary := summarize(text, sentences)
	people := findPeople(text)

	b := &builder{}
	b.subjectQuestion(sentences[0])
	b.yearQuestion(text)
	b.personQuestion(people, sentences)
	b.conceptQuestion(sentences)
	b.laterDetailQuestion(sentences)
	if len(b.questions) < 5 {
		b.mainTopicQuestion(summary)
	}
	for len(b.questions) < minQuestions {
		b.padding()
	}

	return domain.QuizResult{
		Summary:       summary,
		Entities:      extractEntities(text, people),
		Sections:      []string{},
		Questions:     head(b.questions, maxQuestions),
		RelatedTopics: []string{},
	}
}

func summarize(text string, sentences []string) string {
	var summary string
	if n := len(sentences); n > 5 {
		mid := n / 2
		summary = strings.Join(head(sentences, 3), ". ") + ". " + strings.Join(sentences[mid:min(mid+2, n)], ". ")
		summary = cut(summary, longSummaryChars)
	} else {
		summary = cut(strings.Join(head(sentences, 3), ". "), shortSummaryChars)
	}
	if utf8.RuneCountInString(summary) < minSummaryChars {
		summary = cut(text, shortSummaryChars) + ellipsis
	}
	return summary
}

type builder struct {
	questions []domain.QuizQuestion
}

// add appends a question whose answer leads the options. Slots whose options collide are skipped.
func (b *builder) add(question, answer string, distractors []string, difficulty domain.Difficulty, explanation string) {
	options := append([]string{answer}, distractors...)
	q, err := domain.NewQuizQuestion(question, options, answer, difficulty, explanation)
	if err != nil {
		return
	}
	b.questions = append(b.questions, q)
}

func (b *builder) subjectQuestion(first string) {
	m := wordMatches(subjectPattern, cut(first, subjectWindowChars), 1)
	if len(m) == 0 {
		return
	}
	desc := shorten(firstWords(first, descriptionWords), descriptionChars)
	if desc == "" {
		desc = "The main subject of this article"
	}
	b.add(
		fmt.Sprintf("Who or what is %s?", m[0]),
		desc,
		[]string{"A fictional character", "A place or location", "An unrelated topic"},
		domain.DifficultyEasy,
		"This is explained in the introduction of the article.",
	)
}

func (b *builder) yearQuestion(text string) {
	m := wordMatches(yearPattern, text, 1)
	if len(m) == 0 {
		return
	}
	year, err := strconv.Atoi(m[0])
	if err != nil {
		return
	}
	b.add(
		"When did an important event related to this topic occur?",
		fmt.Sprintf("In %d", year),
		[]string{fmt.Sprintf("In %d", year+20), fmt.Sprintf("In %d", year-20), "The date is not mentioned"},
		domain.DifficultyMedium,
		fmt.Sprintf("The year %d is mentioned in the article as significant.", year),
	)
}

func (b *builder) personQuestion(people, sentences []string) {
	if len(people) == 0 {
		return
	}
	person := people[0]
	firstName := strings.Fields(person)[0]

	phrase := ""
	for _, sent := range head(sentences, personScanLimit) {
		if !strings.Contains(sent, person) {
			continue
		}
		words := strings.Fields(sent)
		idx := indexOf(words, firstName)
		if idx >= 0 {
			phrase = strings.Join(words[max(0, idx-3):min(len(words), idx+8)], " ")
		} else {
			phrase = firstWords(sent, phraseWords)
		}
		phrase = shorten(phrase, phraseChars)
		break
	}
	if phrase == "" {
		phrase = "A person mentioned in the article"
	}

	b.add(
		fmt.Sprintf("Who is %s?", person),
		phrase,
		[]string{"A fictional character", "A place name", "An organization"},
		domain.DifficultyMedium,
		fmt.Sprintf("%s is discussed in the article.", person),
	)
}

func (b *builder) conceptQuestion(sentences []string) {
	n := len(sentences)
	if n <= 5 {
		return
	}
	for _, sent := range sentences[n/3 : (2*n)/3] {
		if utf8.RuneCountInString(sent) <= conceptMinChars {
			continue
		}
		concept := shorten(firstWords(sent, phraseWords), phraseChars)
		if concept == "" {
			concept = "A key concept from the article"
		}
		b.add(
			"What is a key detail or concept discussed in this article?",
			concept,
			[]string{"A minor detail not mentioned", "An unrelated concept", "Information not in the article"},
			domain.DifficultyHard,
			"This concept is discussed in detail in the article.",
		)
		return
	}
}

func (b *builder) laterDetailQuestion(sentences []string) {
	n := len(sentences)
	if n <= 8 {
		return
	}
	info := shorten(firstWords(sentences[n/2], phraseWords), phraseChars)
	if info == "" {
		info = "Additional information from the article"
	}
	b.add(
		"What additional information is provided in this article?",
		info,
		[]string{"Information not mentioned", "Unrelated facts", "Speculative content"},
		domain.DifficultyMedium,
		"This information is provided in the article.",
	)
}

func (b *builder) mainTopicQuestion(summary string) {
	topic := shorten(firstWords(summary, phraseWords), phraseChars)
	if topic == "" {
		topic = "The main topic described in the article"
	}
	b.add(
		"What is the main topic of this Wikipedia article?",
		topic,
		[]string{"An unrelated scientific topic", "A fictional story", "A different historical event"},
		domain.DifficultyEasy,
		"This is the main topic discussed in the article.",
	)
}

func (b *builder) padding() {
	b.add(
		"What information can you learn from this article?",
		"Information about the topic described",
		[]string{"Information about unrelated topics", "Fictional stories", "Scientific theories not mentioned"},
		domain.DifficultyEasy,
		"The article provides information about its main topic.",
	)
}

func indexOf(words []string, target string) int {
	for i, w := range words {
		if w == target {
			return i
		}
	}
	return -1
}

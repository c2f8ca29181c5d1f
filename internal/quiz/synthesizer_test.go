package quiz

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
)

const turingText = `Alan Turing was an English mathematician, computer scientist, logician and philosopher. ` +
	`He was highly influential in the development of theoretical computer science. ` +
	`In the early years of his career Alan Turing designed the Automatic Computing Engine for the laboratory. ` +
	`During the Second World War he worked at Bletchley Park in Buckinghamshire. ` +
	`The Turing Award has been given annually since 1966 by the Association for Computing Machinery. ` +
	`Turing proposed a test of machine intelligence that is still discussed widely today. ` +
	`His work on morphogenesis anticipated later discoveries in mathematical biology. ` +
	`He was prosecuted in 1952 for homosexual acts, which were then criminal offences. ` +
	`A royal pardon was granted posthumously by Queen Elizabeth in the year 2013. ` +
	`The Bank of England features his portrait on the fifty pound note issued recently.`

func findQuestion(t *testing.T, res domain.QuizResult, question string) domain.QuizQuestion {
	t.Helper()
	for _, q := range res.Questions {
		if q.Question == question {
			return q
		}
	}
	t.Fatalf("question %q not generated; got %d questions", question, len(res.Questions))
	return domain.QuizQuestion{}
}

func TestSynthesizeTuringAwardYearQuestion(t *testing.T) {
	res := Synthesize("The Turing Award was first given in 1966.")

	q := findQuestion(t, res, "When did an important event related to this topic occur?")
	want := []string{"In 1966", "In 1986", "In 1946", "The date is not mentioned"}
	if diff := cmp.Diff(want, q.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if q.Answer != "In 1966" || q.Difficulty != domain.DifficultyMedium {
		t.Fatalf("unexpected question %#v", q)
	}
	if res.Summary != "The Turing Award was first given in 1966...." {
		t.Fatalf("short summary should fall back to raw text, got %q", res.Summary)
	}
}

func TestSynthesizePunctuationOnlyReturnsMock(t *testing.T) {
	for _, text := range []string{"...!!!???", "Short. Also short!", "   "} {
		if diff := cmp.Diff(MockResult(), Synthesize(text)); diff != "" {
			t.Fatalf("Synthesize(%q) mismatch (-want +got):\n%s", text, diff)
		}
	}
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	first := Synthesize(turingText)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Synthesize(turingText)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestSynthesizeQuestionInvariants(t *testing.T) {
	inputs := []string{
		"The Turing Award was first given in 1966.",
		"a lowercase sentence with no names at all in it",
		turingText,
		strings.Repeat("Several words stand here to form one long sentence about nothing in particular. ", 30),
		"Early life\nEducation\n\nAda Lovelace wrote the first published algorithm for a machine in 1843.",
	}
	for _, text := range inputs {
		res := Synthesize(text)
		if n := len(res.Questions); n < 3 || n > 7 {
			t.Fatalf("Synthesize(%.30q) produced %d questions", text, n)
		}
		for _, q := range res.Questions {
			if err := q.Validate(); err != nil {
				t.Fatalf("invalid question %#v: %v", q, err)
			}
			if q.Options[0] != q.Answer {
				t.Fatalf("answer should lead options: %#v", q)
			}
		}
		if utf8.RuneCountInString(res.Summary) > 500 {
			t.Fatalf("summary too long: %d", utf8.RuneCountInString(res.Summary))
		}
		if res.Sections == nil || len(res.Sections) != 0 || res.RelatedTopics == nil || len(res.RelatedTopics) != 0 {
			t.Fatalf("sections and related topics must be empty lists: %#v %#v", res.Sections, res.RelatedTopics)
		}
		if len(res.Entities.Organizations) != 0 {
			t.Fatalf("organizations must stay empty: %#v", res.Entities.Organizations)
		}
	}
}

func TestSynthesizeLongArticle(t *testing.T) {
	res := Synthesize(turingText)

	if len(res.Questions) != 5 {
		t.Fatalf("expected five content questions, got %d", len(res.Questions))
	}
	wantOrder := []domain.Difficulty{
		domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyMedium,
		domain.DifficultyHard, domain.DifficultyMedium,
	}
	for i, q := range res.Questions {
		if q.Difficulty != wantOrder[i] {
			t.Fatalf("question %d difficulty = %s, want %s", i, q.Difficulty, wantOrder[i])
		}
	}

	subject := findQuestion(t, res, "Who or what is Alan Turing?")
	if subject.Answer != "Alan Turing was an English mathematician, computer scientist, logician and ph..." {
		t.Fatalf("subject answer = %q", subject.Answer)
	}

	year := findQuestion(t, res, "When did an important event related to this topic occur?")
	if year.Answer != "In 1966" {
		t.Fatalf("first year should win, got %q", year.Answer)
	}

	person := findQuestion(t, res, "Who is Alan Turing?")
	if person.Answer != "Alan Turing was an English mathematician, computer scientist," {
		t.Fatalf("person context = %q", person.Answer)
	}

	later := findQuestion(t, res, "What additional information is provided in this article?")
	if later.Answer != "Turing proposed a test of machine intelligence that is still" {
		t.Fatalf("later detail = %q", later.Answer)
	}

	for _, q := range res.Questions[2:] {
		if n := utf8.RuneCountInString(q.Answer); n > 70 {
			t.Fatalf("short phrase %q exceeds 70 chars (%d)", q.Answer, n)
		}
	}
	if n := utf8.RuneCountInString(res.Questions[0].Answer); n > 80 {
		t.Fatalf("description exceeds 80 chars (%d)", n)
	}
}

func TestSynthesizePersonContextAroundFirstName(t *testing.T) {
	text := "In the early years of his career Alan Turing designed the Automatic Computing Engine for the laboratory."
	res := Synthesize(text)

	q := findQuestion(t, res, "Who is Alan Turing?")
	want := "of his career Alan Turing designed the Automatic Computing Engine for"
	if q.Answer != want {
		t.Fatalf("context = %q, want %q", q.Answer, want)
	}
}

func TestSynthesizePadsToThreeQuestions(t *testing.T) {
	res := Synthesize("a lowercase sentence with no names at all in it")
	if len(res.Questions) != 3 {
		t.Fatalf("expected padding to 3, got %d", len(res.Questions))
	}
	if res.Questions[0].Question != "What is the main topic of this Wikipedia article?" {
		t.Fatalf("first question = %q", res.Questions[0].Question)
	}
	for _, q := range res.Questions[1:] {
		if q.Question != "What information can you learn from this article?" {
			t.Fatalf("expected padding question, got %q", q.Question)
		}
	}
}

func TestSummaryIsBounded(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "Sentence %d %s. ", i, strings.Repeat("word ", 40))
	}
	res := Synthesize(b.String())
	if n := utf8.RuneCountInString(res.Summary); n != 500 {
		t.Fatalf("expected summary cut to 500 runes, got %d", n)
	}
}

func TestEntities(t *testing.T) {
	text := "Alan Turing worked with John Smith in London during the war years. " +
		"Later Alan Turing moved to Manchester and the University of Manchester hired him."

	res := Synthesize(text)
	wantPeople := []string{"Alan Turing", "John Smith", "Later Alan"}
	if diff := cmp.Diff(wantPeople, res.Entities.People); diff != "" {
		t.Fatalf("people mismatch (-want +got):\n%s", diff)
	}
	wantLocations := []string{"Alan Turing", "John Smith", "London", "Later Alan Turing", "Manchester"}
	if diff := cmp.Diff(wantLocations, res.Entities.Locations); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
}

func TestFindLocationsDropsStopwords(t *testing.T) {
	got := findLocations("The quick fox. And then Rome was built.")
	if diff := cmp.Diff([]string{"Rome"}, got); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
}

func TestEntityMatchesRespectNonASCIILetters(t *testing.T) {
	text := "éAlan Turing met Ada Lovelace and Charles Babbageé in Zürich."
	if diff := cmp.Diff([]string{"Ada Lovelace"}, findPeople(text)); diff != "" {
		t.Fatalf("people mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ada Lovelace"}, findLocations(text)); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1954"}, wordMatches(yearPattern, "Born ß1912, died 1954.", 1)); diff != "" {
		t.Fatalf("year mismatch (-want +got):\n%s", diff)
	}
}

func TestEmergencyResult(t *testing.T) {
	text := strings.Repeat("x", 250)
	res := EmergencyResult(text)
	if res.Summary != strings.Repeat("x", 200)+"..." {
		t.Fatalf("summary = %q", res.Summary)
	}
	if len(res.Questions) != 1 || res.Questions[0].Answer != "The topic described" {
		t.Fatalf("unexpected questions %#v", res.Questions)
	}
	if err := res.Questions[0].Validate(); err != nil {
		t.Fatalf("emergency question invalid: %v", err)
	}
}

func TestShortenAndCut(t *testing.T) {
	if got := shorten(strings.Repeat("a", 100), 70); got != strings.Repeat("a", 67)+"..." {
		t.Fatalf("shorten = %q", got)
	}
	if got := shorten("fits", 70); got != "fits" {
		t.Fatalf("shorten = %q", got)
	}
	if got := cut("héllo", 2); got != "hé" {
		t.Fatalf("cut = %q", got)
	}
}

package chatbot

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a chat message.
type Intent int

const (
	IntentTotalCourses Intent = iota
	IntentLessonOrQuiz
	IntentMostPopular
	IntentFreeCourses
	IntentPaidCourses
	IntentLatestCourses
	IntentCreateCourseCommand
	IntentCreateCoursePayload
	IntentGenericFallback
)

var intentNames = map[Intent]string{
	IntentTotalCourses:        "total-courses",
	IntentLessonOrQuiz:        "lesson-or-quiz-query",
	IntentMostPopular:         "most-popular",
	IntentFreeCourses:         "free-courses",
	IntentPaidCourses:         "paid-courses",
	IntentLatestCourses:       "latest-courses",
	IntentCreateCourseCommand: "create-course-command",
	IntentCreateCoursePayload: "create-course-payload",
	IntentGenericFallback:     "generic-fallback",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

var (
	totalRe   = regexp.MustCompile(`how many courses|total courses`)
	lessonRe  = regexp.MustCompile(`lesson|lessons`)
	quizRe    = regexp.MustCompile(`quiz|quizzes`)
	popularRe = regexp.MustCompile(`\b(popular courses?|most enrolled)\b`)
	freeRe    = regexp.MustCompile(`free course`)
	paidRe    = regexp.MustCompile(`paid course`)
	latestRe  = regexp.MustCompile(`latest course|newest course`)
)

const (
	createCommandPrefix = "/createcourse"
	payloadPrefix       = "course:"
)

// Message keeps the caller's text alongside the folded form used for matching.
type Message struct {
	Raw   string
	Text  string // trimmed, case preserved
	Lower string // trimmed and lowercased
}

func NewMessage(raw string) Message {
	text := strings.TrimSpace(raw)
	return Message{Raw: raw, Text: text, Lower: strings.ToLower(text)}
}

func (m Message) Empty() bool {
	return m.Text == ""
}

func (m Message) AsksLessons() bool { return lessonRe.MatchString(m.Lower) }
func (m Message) AsksQuizzes() bool { return quizRe.MatchString(m.Lower) }

type rule struct {
	intent Intent
	match  func(Message) bool
}

// rules is evaluated top to bottom; rank is the only conflict resolution.
var rules = []rule{
	{IntentTotalCourses, func(m Message) bool { return totalRe.MatchString(m.Lower) }},
	{IntentLessonOrQuiz, func(m Message) bool { return m.AsksLessons() || m.AsksQuizzes() }},
	{IntentMostPopular, func(m Message) bool { return popularRe.MatchString(m.Lower) }},
	{IntentFreeCourses, func(m Message) bool { return freeRe.MatchString(m.Lower) }},
	{IntentPaidCourses, func(m Message) bool { return paidRe.MatchString(m.Lower) }},
	{IntentLatestCourses, func(m Message) bool { return latestRe.MatchString(m.Lower) }},
	{IntentCreateCourseCommand, func(m Message) bool { return strings.HasPrefix(m.Lower, createCommandPrefix) }},
	// leading whitespace disqualifies a payload, unlike the command
	{IntentCreateCoursePayload, func(m Message) bool { return strings.HasPrefix(strings.ToLower(m.Raw), payloadPrefix) }},
}

// Candidates lists every intent the message matches in rank order. The last
// element is always IntentGenericFallback.
func Candidates(m Message) []Intent {
	out := make([]Intent, 0, 3)
	for _, r := range rules {
		if r.match(m) {
			out = append(out, r.intent)
		}
	}
	return append(out, IntentGenericFallback)
}

// Classify returns the highest ranked intent for the message.
func Classify(message string) Intent {
	return Candidates(NewMessage(message))[0]
}

package chatbot

import (
	"context"
	"edulearn/backend/models"
	"edulearn/backend/store"
	"edulearn/backend/utils"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage is a step of course generation.
type Stage int

const (
	StageAwaitingPayload Stage = iota
	StageAuthorizing
	StageDescribingCourse
	StageGeneratingLessonTitle
	StageGeneratingLessonContent
	StageGeneratingQuiz
	StagePersistingQuiz
	StageFinalizing
	StageDone
)

var stageNames = [...]string{
	"awaiting-payload",
	"authorizing",
	"describing-course",
	"generating-lesson-title",
	"generating-lesson-content",
	"generating-quiz",
	"persisting-quiz",
	"finalizing",
	"done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

const (
	LessonsPerCourse = 3

	Instructions  = "Great! Please provide the course title and category in this format:\n\nCourse: Your Title | Category: Your Category"
	PayloadFormat = "Please follow the correct format: `Course: Title | Category: Category`"

	placeholderImage = "/logo.svg"
	noDescription    = "No description generated."

	platformSystemPrompt = "You are EduLearn AI, an assistant for an e-learning platform."
	lessonSystemPrompt   = "You are EduLearn AI."
)

var (
	payloadTitleRe    = regexp.MustCompile(`(?i)course:\s*(.+)`)
	payloadCategoryRe = regexp.MustCompile(`(?i)category:\s*(.+)`)

	// generationNamespace scopes idempotency keys derived with uuid.NewSHA1.
	generationNamespace = uuid.MustParse("6f1c9a52-3c1e-4f0e-9a43-1f7a6e0d2b8c")
)

// ParsePayload extracts the title and category from
// "Course: <title> | Category: <category>".
func ParsePayload(text string) (title, category string, err error) {
	parts := strings.Split(text, "|")
	tm := payloadTitleRe.FindStringSubmatch(parts[0])
	var cm []string
	if len(parts) > 1 {
		cm = payloadCategoryRe.FindStringSubmatch(parts[1])
	}
	if tm == nil || cm == nil {
		return "", "", &FormatError{Hint: PayloadFormat}
	}
	title, category = strings.TrimSpace(tm[1]), strings.TrimSpace(cm[1])
	if title == "" || category == "" {
		return "", "", &FormatError{Hint: PayloadFormat}
	}
	return title, category, nil
}

// GenerationKey is the idempotency token of one caller asking for one course.
func GenerationKey(email, title, category string) string {
	name := strings.ToLower(strings.TrimSpace(email)) + "\x00" +
		strings.ToLower(title) + "\x00" + strings.ToLower(category)
	return uuid.NewSHA1(generationNamespace, []byte(name)).String()
}

// Orchestrator turns a course payload into a persisted course with lessons
// and quizzes.
type Orchestrator struct {
	store       Store
	gen         TextGenerator
	model       string
	log         *utils.Logger
	compensator Compensator
	guard       Guard
}

// generation accumulates what has been persisted so far.
type generation struct {
	course  *models.Course
	lessons []models.Lesson
}

// Create runs the full pipeline for a course payload. Authorization comes
// before the payload is even parsed.
func (o *Orchestrator) Create(ctx context.Context, caller *Caller, m Message) (string, error) {
	user, err := o.authorize(ctx, caller)
	if err != nil {
		return "", err
	}

	title, category, err := ParsePayload(m.Text)
	if err != nil {
		return "", err
	}

	var key string
	if o.guard != nil {
		key = GenerationKey(user.Email, title, category)
		ok, err := o.guard.Acquire(ctx, key)
		if err != nil {
			return "", fmt.Errorf("acquire generation key: %w", err)
		}
		if !ok {
			return "", ErrDuplicateGeneration
		}
	}

	log := o.log.With("title", title, "category", category, "teacher_id", user.ID)
	log.Info("Course generation started")

	g := &generation{}
	reply, err := o.generate(ctx, g, user, title, category)
	if err != nil {
		log.Error("Course generation failed", "error", err)
		o.compensate(ctx, g, err, log)
		if o.guard != nil {
			if rerr := o.guard.Release(context.WithoutCancel(ctx), key); rerr != nil {
				log.Warn("Failed to release generation key", "error", rerr)
			}
		}
		return "", err
	}

	log.Info("Course generation finished", "course_id", g.course.ID)
	return reply, nil
}

func (o *Orchestrator) authorize(ctx context.Context, caller *Caller) (*models.User, error) {
	if caller == nil || strings.TrimSpace(caller.Email) == "" {
		return nil, ErrUnauthorized
	}
	user, err := o.store.UserByEmail(ctx, caller.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, &GenerationError{Stage: StageAuthorizing, Err: err}
	}
	if !user.IsTeacher() {
		return nil, ErrForbidden
	}
	return user, nil
}

func (o *Orchestrator) generate(ctx context.Context, g *generation, user *models.User, title, category string) (string, error) {
	prompt := fmt.Sprintf("Write a concise, engaging course description for a course titled \"%s\" in the category \"%s\".", title, category)
	description, err := o.gen.Complete(ctx, platformSystemPrompt, prompt, o.model)
	if err != nil {
		return "", &GenerationError{Stage: StageDescribingCourse, Err: err}
	}
	if description = strings.TrimSpace(description); description == "" {
		description = noDescription
	}

	teacherID := user.ID
	course := &models.Course{
		Title:       title,
		Category:    category,
		Description: description,
		Image:       placeholderImage,
		TeacherID:   &teacherID,
		IsPublished: true,
		IsPaid:      true,
	}
	if err := o.store.CreateCourse(ctx, course); err != nil {
		return "", &GenerationError{Stage: StageDescribingCourse, Err: fmt.Errorf("create course: %w", err)}
	}
	g.course = course

	titles := make([]string, 0, LessonsPerCourse)
	for i := 1; i <= LessonsPerCourse; i++ {
		lesson, err := o.generateLesson(ctx, g, i, title)
		if err != nil {
			return "", err
		}
		titles = append(titles, lesson.Title)
	}

	course.Lessons = g.lessons
	if err := o.store.SaveCourse(ctx, course); err != nil {
		return "", &GenerationError{Stage: StageFinalizing, Err: fmt.Errorf("save course: %w", err)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Course \"%s\" created with %d lessons and quizzes!\n\nLessons:", title, LessonsPerCourse)
	for _, t := range titles {
		b.WriteString("\n- ")
		b.WriteString(t)
	}
	return b.String(), nil
}

func (o *Orchestrator) generateLesson(ctx context.Context, g *generation, i int, courseTitle string) (*models.Lesson, error) {
	var lessonTitle, content string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		prompt := fmt.Sprintf("Generate a short, clear, and concise lesson title (max 8 words) for Lesson %d of the course titled \"%s\". Only return the title. Do not include 'Lesson %d:' prefix or any explanation.", i, courseTitle, i)
		out, err := o.gen.Complete(egCtx, lessonSystemPrompt, prompt, o.model)
		if err != nil {
			return &GenerationError{Stage: StageGeneratingLessonTitle, Lesson: i, Err: err}
		}
		lessonTitle = strings.TrimSpace(out)
		return nil
	})
	eg.Go(func() error {
		prompt := fmt.Sprintf("Write a lesson content (max 150 words) for Lesson %d of the course \"%s\".", i, courseTitle)
		out, err := o.gen.Complete(egCtx, lessonSystemPrompt, prompt, o.model)
		if err != nil {
			return &GenerationError{Stage: StageGeneratingLessonContent, Lesson: i, Err: err}
		}
		content = strings.TrimSpace(out)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if lessonTitle == "" {
		lessonTitle = fmt.Sprintf("Lesson %d", i)
	}

	lesson := models.Lesson{
		CourseID:      g.course.ID,
		Title:         lessonTitle,
		Content:       content,
		SequenceOrder: i,
	}
	if err := o.store.CreateLesson(ctx, &lesson); err != nil {
		return nil, &GenerationError{Stage: StageGeneratingLessonContent, Lesson: i, Err: fmt.Errorf("create lesson: %w", err)}
	}
	g.lessons = append(g.lessons, lesson)

	prompt := fmt.Sprintf("Create 5 multiple-choice quizzes for the lesson titled \"%s\".\n"+
		"Each quiz should be a valid JSON object with \"question\", \"options\" (array), and \"correctAnswer\" keys.\n"+
		"Return an array of such JSON objects. Do not include any introductory sentences or explanations or markdown formatting.", lessonTitle)
	raw, err := o.gen.Complete(ctx, lessonSystemPrompt, prompt, o.model)
	if err != nil {
		return nil, &GenerationError{Stage: StageGeneratingQuiz, Lesson: i, Err: err}
	}

	drafts, parsed := ParseQuizzes(raw)
	if !parsed {
		o.log.Warn("Quiz completion unusable, using fallback set", "lesson", i, "raw", raw)
	}

	lesson.Quizzes = make([]models.Quiz, 0, len(drafts))
	for _, d := range drafts {
		quiz := models.Quiz{
			LessonID:      lesson.ID,
			Question:      d.Question,
			Options:       d.Options,
			CorrectAnswer: d.CorrectAnswer,
			IsAIGenerated: true,
		}
		if err := o.store.CreateQuiz(ctx, &quiz); err != nil {
			return nil, &GenerationError{Stage: StagePersistingQuiz, Lesson: i, Err: fmt.Errorf("create quiz: %w", err)}
		}
		lesson.Quizzes = append(lesson.Quizzes, quiz)
	}
	if err := o.store.SaveLesson(ctx, &lesson); err != nil {
		return nil, &GenerationError{Stage: StagePersistingQuiz, Lesson: i, Err: fmt.Errorf("save lesson: %w", err)}
	}
	g.lessons[len(g.lessons)-1] = lesson
	return &lesson, nil
}

// compensate hands a partially persisted course to the compensator, if any.
// Without one the partial documents stay in place.
func (o *Orchestrator) compensate(ctx context.Context, g *generation, cause error, log *utils.Logger) {
	if o.compensator == nil || g.course == nil {
		return
	}
	// the request context may already be cancelled
	if err := o.compensator.Compensate(context.WithoutCancel(ctx), g.course, g.lessons, cause); err != nil {
		log.Error("Compensation failed", "course_id", g.course.ID, "error", err)
		return
	}
	log.Warn("Partially generated course removed", "course_id", g.course.ID)
}

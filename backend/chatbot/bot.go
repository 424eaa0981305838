// Package chatbot answers EduLearn chat messages: catalog questions straight
// from the store, course generation through the text generator, and anything
// else through a grounded completion.
package chatbot

import (
	"context"
	"edulearn/backend/utils"
	"fmt"
	"strings"
)

const noAnswer = "Sorry, I couldn't find a good answer."

// Caller is the session identity attached to a chat message.
type Caller struct {
	Email string
}

type Request struct {
	Message string
	Caller  *Caller
}

type Option func(*Bot)

func WithLogger(log *utils.Logger) Option {
	return func(b *Bot) { b.log = log }
}

// WithModel overrides the generator's default model for every call.
func WithModel(model string) Option {
	return func(b *Bot) { b.model = model }
}

func WithCompensator(c Compensator) Option {
	return func(b *Bot) { b.compensator = c }
}

func WithGuard(g Guard) Option {
	return func(b *Bot) { b.guard = g }
}

type Bot struct {
	store       Store
	gen         TextGenerator
	model       string
	log         *utils.Logger
	compensator Compensator
	guard       Guard

	responder    *Responder
	orchestrator *Orchestrator
}

func New(store Store, gen TextGenerator, opts ...Option) *Bot {
	b := &Bot{store: store, gen: gen, log: utils.NewNopLogger()}
	for _, opt := range opts {
		opt(b)
	}
	b.responder = NewResponder(store)
	b.orchestrator = &Orchestrator{
		store:       store,
		gen:         gen,
		model:       b.model,
		log:         b.log,
		compensator: b.compensator,
		guard:       b.guard,
	}
	return b
}

// Reply walks the message's candidate intents in rank order and returns the
// first handled reply.
func (b *Bot) Reply(ctx context.Context, req Request) (string, error) {
	m := NewMessage(req.Message)
	if m.Empty() {
		return "", ErrMissingMessage
	}

	for _, intent := range Candidates(m) {
		reply, handled, err := b.handle(ctx, intent, m, req.Caller)
		if err != nil {
			return "", fmt.Errorf("%s: %w", intent, err)
		}
		if handled {
			b.log.Debug("Chat message answered", "intent", intent.String())
			return reply, nil
		}
	}
	return noAnswer, nil
}

func (b *Bot) handle(ctx context.Context, intent Intent, m Message, caller *Caller) (string, bool, error) {
	var (
		reply string
		err   error
	)
	switch intent {
	case IntentTotalCourses:
		reply, err = b.responder.TotalCourses(ctx)
	case IntentLessonOrQuiz:
		return b.responder.LessonsOrQuizzes(ctx, m)
	case IntentMostPopular:
		reply, err = b.responder.MostPopular(ctx)
	case IntentFreeCourses:
		reply, err = b.responder.ByPricing(ctx, false)
	case IntentPaidCourses:
		reply, err = b.responder.ByPricing(ctx, true)
	case IntentLatestCourses:
		reply, err = b.responder.Latest(ctx)
	case IntentCreateCourseCommand:
		reply = Instructions
	case IntentCreateCoursePayload:
		reply, err = b.orchestrator.Create(ctx, caller, m)
	default:
		reply, err = b.answer(ctx, m)
	}
	if err != nil {
		return "", false, err
	}
	return reply, true, nil
}

// answer grounds a free-form question in the published catalog.
func (b *Bot) answer(ctx context.Context, m Message) (string, error) {
	courses, err := b.store.PublishedCourses(ctx)
	if err != nil {
		return "", fmt.Errorf("load published courses: %w", err)
	}

	var list strings.Builder
	for i, c := range courses {
		category := c.Category
		if category == "" {
			category = "General"
		}
		if i > 0 {
			list.WriteByte('\n')
		}
		fmt.Fprintf(&list, "%d. %s [%s]: %s", i+1, c.Title, category, c.Description)
	}

	prompt := fmt.Sprintf("You are EduLearn AI, a helpful teaching assistant. Use the following data to answer the user's question.\n\n"+
		"Available Courses:\n%s\n\nUser asked: \"%s\"\n\nRespond appropriately.", list.String(), m.Text)

	out, err := b.gen.Complete(ctx, platformSystemPrompt, prompt, b.model)
	if err != nil {
		b.log.Error("Generic answer failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrAnswerFailed, err)
	}
	if out = strings.TrimSpace(out); out == "" {
		return noAnswer, nil
	}
	return out, nil
}

package chat

import (
	"context"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/providers"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

// Completer is the one-shot completion exchange the pipeline depends on.
// *providers.Client implements it.
type Completer interface {
	ChatOnce(ctx context.Context, messages []providers.Message, model string, temperature float64, maxTokens int) (string, int64, error)
}

// Options are the request parameters applied to every ask.
type Options struct {
	Temperature      float64
	MaxTokens        int
	DefaultPersonaID int64
}

// Service is the persona-aware request pipeline: it resolves the caller's
// persona and the active model from storage on every call (no in-process
// caching) and performs one completion exchange.
type Service struct {
	store  *storage.Store
	client Completer
	opts   Options
}

func NewService(store *storage.Store, client Completer, opts Options) *Service {
	return &Service{store: store, client: client, opts: opts}
}

// Reply is a successful pipeline result.
type Reply struct {
	Text       string
	LatencyMS  int64
	Persona    string
	ModelLabel string
}

// Ask runs the whole pipeline for one (user, text) pair. Registry errors
// and *providers.APIError propagate untranslated; rendering them for the
// chat is the dispatcher's job.
func (s *Service) Ask(ctx context.Context, userID int64, text string) (Reply, error) {
	persona, err := s.store.GetUserPersona(ctx, userID, s.opts.DefaultPersonaID)
	if err != nil {
		return Reply{}, err
	}

	model, err := s.store.GetActiveModel(ctx)
	if err != nil {
		return Reply{}, err
	}

	messages := Compose(persona, text)
	answer, latency, err := s.client.ChatOnce(ctx, messages, model.Key, s.opts.Temperature, s.opts.MaxTokens)
	if err != nil {
		return Reply{}, err
	}

	return Reply{
		Text:       answer,
		LatencyMS:  latency,
		Persona:    persona.Name,
		ModelLabel: model.Label,
	}, nil
}

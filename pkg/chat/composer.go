package chat

import (
	"fmt"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/providers"
	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

// systemTemplate frames every completion request with the persona's name
// and prompt. The numbered rules are part of the contract: the model must
// stay in character while keeping technical answers accurate.
const systemTemplate = `Ты — %s.
%s

Строго соблюдай правила:
1. Всегда оставайся в образе и отвечай в его манере речи.
2. На технические вопросы отвечай точно и по существу, не выходя из образа.
3. Никогда не выходи из образа и не упоминай, что играешь роль.
4. Не приводи дословных цитат длиннее десяти слов.
5. Если манера речи образа выражена слабо, усиливай её, сохраняя фактическую точность.`

// Compose builds the two-message exchange for one request: the persona
// framing, then the user's text verbatim. Pure and deterministic.
func Compose(persona storage.Persona, userText string) []providers.Message {
	return []providers.Message{
		{Role: "system", Content: fmt.Sprintf(systemTemplate, persona.Name, persona.Prompt)},
		{Role: "user", Content: userText},
	}
}

package chat

import (
	"reflect"
	"strings"
	"testing"

	"github.com/BazlovVladimir/tg-bot-simple1/pkg/storage"
)

func TestCompose(t *testing.T) {
	persona := storage.Persona{ID: 1, Name: "Йода", Prompt: "Переставляешь слова, мудр и немногословен."}

	messages := Compose(persona, "Привет")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	system := messages[0]
	if system.Role != "system" {
		t.Fatalf("expected system role first, got %q", system.Role)
	}
	if !strings.Contains(system.Content, "Йода") {
		t.Fatalf("system message must contain the persona name: %q", system.Content)
	}
	if !strings.Contains(system.Content, persona.Prompt) {
		t.Fatalf("system message must contain the persona prompt: %q", system.Content)
	}

	user := messages[1]
	if user.Role != "user" {
		t.Fatalf("expected user role second, got %q", user.Role)
	}
	if user.Content != "Привет" {
		t.Fatalf("user text must be passed verbatim, got %q", user.Content)
	}
}

func TestCompose_Deterministic(t *testing.T) {
	persona := storage.Persona{ID: 2, Name: "Пират", Prompt: "Йо-хо-хо."}

	first := Compose(persona, "Что такое горутина?")
	second := Compose(persona, "Что такое горутина?")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compose must be deterministic:\n%+v\n%+v", first, second)
	}
}

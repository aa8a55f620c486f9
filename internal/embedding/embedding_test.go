package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevinmichaelchen/portfolio/internal/models"
)

func TestBatches(t *testing.T) {
	assert.Empty(t, batches(0, 256))
	assert.Equal(t, []span{{0, 3}}, batches(3, 256))
	assert.Equal(t, []span{{0, 256}, {256, 512}, {512, 600}}, batches(600, 256))
}

func TestProjectText(t *testing.T) {
	desc, lang, blurb := "Todo app", "Go", "I built a todo app."
	text := ProjectText(models.Repo{
		Name:         "todo",
		Description:  &desc,
		Language:     &lang,
		Topics:       []string{"cli"},
		AIBlurb:      &blurb,
		AICategories: []string{"CLI"},
	})
	assert.Equal(t, "todo: Todo app\nI built a todo app.\nTags: cli, CLI, Go", text)

	assert.Equal(t, "bare", ProjectText(models.Repo{Name: "bare"}))
}

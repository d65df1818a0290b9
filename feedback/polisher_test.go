package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	text   string
	err    error
	calls  int
	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func TestGeminiPolisher(t *testing.T) {
	logging.Log = logrus.New()
	ctx := context.Background()

	t.Run("Happy path - rewrites feedback", func(t *testing.T) {
		models := &fakeModels{text: "  亮点：结构清晰。\n改进建议：增加互动。 "}
		p := newGeminiPolisher(models, "")

		out, err := p.Polish(ctx, "结构清晰但是互动少")
		require.NoError(t, err)
		assert.Equal(t, "亮点：结构清晰。\n改进建议：增加互动。", out)
		assert.Equal(t, 1, models.calls)
		assert.Equal(t, DefaultModel, models.model)
		assert.Equal(t, float32(0.7), *models.config.Temperature)
		assert.Equal(t, float32(0.95), *models.config.TopP)
		assert.Contains(t, models.prompt, "结构清晰但是互动少")
	})

	t.Run("Happy path - short input skips the model", func(t *testing.T) {
		models := &fakeModels{text: "unused"}
		p := newGeminiPolisher(models, "m")

		out, err := p.Polish(ctx, "  很好  ")
		require.NoError(t, err)
		assert.Equal(t, "  很好  ", out)
		assert.Zero(t, models.calls)
	})

	t.Run("Unhappy path - request error returns raw text", func(t *testing.T) {
		p := newGeminiPolisher(&fakeModels{err: errors.New("quota exceeded")}, "m")
		out, err := p.Polish(ctx, "needs more practice")
		assert.Error(t, err)
		assert.Equal(t, "needs more practice", out)
	})

	t.Run("Unhappy path - empty answer returns raw text", func(t *testing.T) {
		p := newGeminiPolisher(&fakeModels{text: "   "}, "m")
		out, err := p.Polish(ctx, "needs more practice")
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Equal(t, "needs more practice", out)
	})

	t.Run("Unhappy path - missing api key", func(t *testing.T) {
		_, err := NewGeminiPolisher(ctx, "", "")
		assert.Error(t, err)
	})
}

func TestNoopPolisher(t *testing.T) {
	out, err := NoopPolisher{}.Polish(context.Background(), "keep me")
	require.NoError(t, err)
	assert.Equal(t, "keep me", out)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"history_quiz_backend/internal/config"
	"history_quiz_backend/internal/model"
	"history_quiz_backend/internal/util"
	"history_quiz_backend/pkg/logger"
	"history_quiz_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Generator produces question sets. Any error means nothing usable was produced.
type Generator interface {
	GeneratePractice(ctx context.Context, topic string, count int, mode model.QuizMode) ([]model.Question, error)
	GenerateExam(ctx context.Context, blueprint []config.BlueprintEntry) ([]model.Question, error)
}

type ChatClient interface {
	Chat(ctx context.Context, system, prompt string) (string, error)
}

type AIGenerator struct {
	client ChatClient
}

func NewAIGenerator(client ChatClient) *AIGenerator {
	return &AIGenerator{client: client}
}

const generatorSystemPrompt = "Bạn là giáo viên Lịch sử ra đề theo cấu trúc thi tốt nghiệp THPT. " +
	"Chỉ trả về một mảng JSON hợp lệ, không kèm giải thích hay markdown."

const questionSchema = `Mỗi phần tử có dạng:
- Trắc nghiệm: {"type":"mcq","question":"...","context":"(tư liệu, có thể rỗng)","options":["A","B","C","D"],"correctIndex":0,"explanation":"..."}
- Đúng/Sai: {"type":"tf_group","context":"(đoạn tư liệu)","statements":[{"text":"a) ...","answer":true},{"text":"b) ...","answer":false},{"text":"c) ...","answer":true},{"text":"d) ...","answer":false}],"explanation":"..."}`

func practicePrompt(topic string, count int, mode model.QuizMode) string {
	var kind string
	switch mode {
	case model.ModeMCQ:
		kind = "chỉ gồm câu trắc nghiệm (type mcq)"
	case model.ModeTFGroup:
		kind = "chỉ gồm câu Đúng/Sai (type tf_group, mỗi câu 4 ý)"
	default:
		kind = "kết hợp câu trắc nghiệm (mcq) và câu Đúng/Sai (tf_group, mỗi câu 4 ý)"
	}
	return fmt.Sprintf("Chủ đề: %s\nHãy tạo %d câu hỏi %s.\n%s", topic, count, kind, questionSchema)
}

func examEntryPrompt(e config.BlueprintEntry) string {
	return fmt.Sprintf("Chủ đề: %s\nHãy tạo đúng %d câu trắc nghiệm (mcq) và %d câu Đúng/Sai (tf_group, mỗi câu 4 ý), độ khó tăng dần.\n%s",
		e.Topic, e.MCQ, e.TFGroup, questionSchema)
}

func (g *AIGenerator) GeneratePractice(ctx context.Context, topic string, count int, mode model.QuizMode) ([]model.Question, error) {
	ctx, span := tracing.Tracer.Start(ctx, "generation.practice")
	defer span.End()
	span.SetAttributes(attribute.String("topic", topic), attribute.Int("count", count), attribute.String("mode", string(mode)))

	raw, err := g.client.Chat(ctx, generatorSystemPrompt, practicePrompt(topic, count, mode))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	questions, err := ParseQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	questions = FilterByMode(questions, mode)
	if len(questions) > count {
		questions = questions[:count]
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions", util.ErrGenerationFailed)
	}
	return questions, nil
}

// GenerateExam generates every blueprint entry concurrently and lays the result out as
// Part I (all mcq, blueprint order) followed by Part II (all tf groups).
func (g *AIGenerator) GenerateExam(ctx context.Context, blueprint []config.BlueprintEntry) ([]model.Question, error) {
	ctx, span := tracing.Tracer.Start(ctx, "generation.exam")
	defer span.End()

	if len(blueprint) == 0 {
		return nil, fmt.Errorf("%w: empty blueprint", util.ErrGenerationFailed)
	}

	parts := make([][]model.Question, len(blueprint))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, entry := range blueprint {
		i, entry := i, entry
		eg.Go(func() error {
			qs, err := g.generateEntry(egCtx, entry)
			if err != nil {
				return fmt.Errorf("blueprint %q: %w", entry.Topic, err)
			}
			parts[i] = qs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	return AssembleExam(parts), nil
}

func (g *AIGenerator) generateEntry(ctx context.Context, entry config.BlueprintEntry) ([]model.Question, error) {
	raw, err := g.client.Chat(ctx, generatorSystemPrompt, examEntryPrompt(entry))
	if err != nil {
		return nil, err
	}
	questions, err := ParseQuestions(raw)
	if err != nil {
		return nil, err
	}
	return PickForEntry(questions, entry)
}

// PickForEntry takes exactly the blueprint's mcq and tf_group counts from a generated batch.
func PickForEntry(questions []model.Question, entry config.BlueprintEntry) ([]model.Question, error) {
	var mcqs, groups []model.Question
	for _, q := range questions {
		switch q.Type {
		case model.QuestionMCQ:
			if len(mcqs) < entry.MCQ {
				mcqs = append(mcqs, q)
			}
		case model.QuestionTFGroup:
			if len(groups) < entry.TFGroup {
				groups = append(groups, q)
			}
		}
	}
	if len(mcqs) < entry.MCQ || len(groups) < entry.TFGroup {
		return nil, fmt.Errorf("got %d mcq / %d tf_group, want %d / %d", len(mcqs), len(groups), entry.MCQ, entry.TFGroup)
	}
	return append(mcqs, groups...), nil
}

// AssembleExam orders the per-topic batches into the two exam parts.
func AssembleExam(parts [][]model.Question) []model.Question {
	var partI, partII []model.Question
	for _, qs := range parts {
		for _, q := range qs {
			if q.Type == model.QuestionMCQ {
				partI = append(partI, q)
			} else {
				partII = append(partII, q)
			}
		}
	}
	return append(partI, partII...)
}

func FilterByMode(questions []model.Question, mode model.QuizMode) []model.Question {
	if mode != model.ModeMCQ && mode != model.ModeTFGroup {
		return questions
	}
	want := model.QuestionMCQ
	if mode == model.ModeTFGroup {
		want = model.QuestionTFGroup
	}
	out := questions[:0:0]
	for _, q := range questions {
		if q.Type == want {
			out = append(out, q)
		}
	}
	return out
}

// ParseQuestions decodes model output into questions. Malformed items are dropped;
// tf groups without statements are kept so the view can flag them.
func ParseQuestions(raw string) ([]model.Question, error) {
	payload := stripFences(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		var wrapped struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err2 := json.Unmarshal([]byte(payload), &wrapped); err2 != nil || wrapped.Questions == nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		items = wrapped.Questions
	}

	questions := make([]model.Question, 0, len(items))
	for i, item := range items {
		var q model.Question
		if err := json.Unmarshal(item, &q); err != nil {
			logger.Log.Warn("Dropping undecodable question", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err := validateQuestion(q); err != nil {
			logger.Log.Warn("Dropping invalid question", zap.Int("index", i), zap.Error(err))
			continue
		}
		if q.Type == model.QuestionTFGroup && q.StatementCount() == 0 {
			logger.Log.Warn("Generated tf_group has no statements", zap.Int("index", i))
		}
		questions = append(questions, q)
	}
	return questions, nil
}

var errInvalidQuestion = errors.New("invalid question")

func validateQuestion(q model.Question) error {
	switch q.Type {
	case model.QuestionMCQ:
		if q.MCQ == nil || strings.TrimSpace(q.MCQ.Prompt) == "" {
			return fmt.Errorf("%w: mcq without prompt", errInvalidQuestion)
		}
		if len(q.MCQ.Options) < 2 {
			return fmt.Errorf("%w: mcq with %d options", errInvalidQuestion, len(q.MCQ.Options))
		}
		if q.MCQ.CorrectIndex < 0 || q.MCQ.CorrectIndex >= len(q.MCQ.Options) {
			return fmt.Errorf("%w: correctIndex %d out of range", errInvalidQuestion, q.MCQ.CorrectIndex)
		}
	case model.QuestionTFGroup:
		if q.TFGroup == nil {
			return fmt.Errorf("%w: tf_group without payload", errInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: type %q", errInvalidQuestion, q.Type)
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		return s
	}
	// 模型偶尔在 JSON 前后夹带说明文字
	if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

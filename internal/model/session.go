package model

import (
	"sort"
	"time"
)

type Screen string

const (
	ScreenConfig  Screen = "config"
	ScreenPlaying Screen = "playing"
	ScreenResult  Screen = "result"
)

type QuizMode string

const (
	ModeMCQ     QuizMode = "mcq"
	ModeTFGroup QuizMode = "tf_group"
	ModeMix     QuizMode = "mix"
)

func (m QuizMode) Valid() bool {
	return m == ModeMCQ || m == ModeTFGroup || m == ModeMix
}

type ExamStatus string

const (
	ExamIdle       ExamStatus = "idle"
	ExamCountdown  ExamStatus = "countdown"
	ExamInProgress ExamStatus = "in_progress"
	ExamSubmitted  ExamStatus = "submitted"
)

// Answer 用户对一道题的作答
// IsCorrect is only meaningful after grading.
type Answer struct {
	Selected   *int    `json:"selected,omitempty"`
	Statements []*bool `json:"statements,omitempty"`
	IsCorrect  bool    `json:"isCorrect"`
}

func (a *Answer) Clone() *Answer {
	if a == nil {
		return nil
	}
	c := &Answer{IsCorrect: a.IsCorrect}
	if a.Selected != nil {
		v := *a.Selected
		c.Selected = &v
	}
	c.Statements = cloneBools(a.Statements)
	return c
}

// Session 练习/考试会话，每个用户最多保存一份
type Session struct {
	Screen          Screen     `json:"screen"`
	Topic           string     `json:"topic"`
	Count           int        `json:"count"`
	Mode            QuizMode   `json:"mode"`
	Questions       []Question `json:"questions"`
	CurrentIdx      int        `json:"currentIdx"`
	UserAnswers     []*Answer  `json:"userAnswers"`
	Score           float64    `json:"score"`
	Timer           int        `json:"timer"`
	IsActive        bool       `json:"isActive"`
	IsExamMode      bool       `json:"isExamMode"`
	ExamStatus      ExamStatus `json:"examStatus"`
	MarkedQuestions []int      `json:"markedQuestions"`

	Countdown   int        `json:"countdown"`
	Draft       []*bool    `json:"draft,omitempty"`
	Duration    int        `json:"duration"`
	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

func NewConfigSession() *Session {
	return &Session{
		Screen:          ScreenConfig,
		Count:           10,
		Mode:            ModeMix,
		ExamStatus:      ExamIdle,
		MarkedQuestions: []int{},
	}
}

func (s *Session) IsMarked(idx int) bool {
	for _, m := range s.MarkedQuestions {
		if m == idx {
			return true
		}
	}
	return false
}

// SetMarked keeps MarkedQuestions sorted and duplicate-free.
func (s *Session) SetMarked(idx int, marked bool) {
	out := s.MarkedQuestions[:0:0]
	for _, m := range s.MarkedQuestions {
		if m != idx {
			out = append(out, m)
		}
	}
	if marked {
		out = append(out, idx)
		sort.Ints(out)
	}
	s.MarkedQuestions = out
}

// Clone 深拷贝，交给持久化层时使用，避免共享引用
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Questions = make([]Question, len(s.Questions))
	copy(c.Questions, s.Questions)
	c.UserAnswers = make([]*Answer, len(s.UserAnswers))
	for i, a := range s.UserAnswers {
		c.UserAnswers[i] = a.Clone()
	}
	c.MarkedQuestions = append([]int{}, s.MarkedQuestions...)
	c.Draft = cloneBools(s.Draft)
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		c.SubmittedAt = &t
	}
	return &c
}

func cloneBools(in []*bool) []*bool {
	if in == nil {
		return nil
	}
	out := make([]*bool, len(in))
	for i, b := range in {
		if b != nil {
			v := *b
			out[i] = &v
		}
	}
	return out
}

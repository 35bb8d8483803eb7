package budget

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ctxbudget/tokens"
	"github.com/randalmurphal/ctxbudget/truncate"
)

// block returns text estimating to exactly n tokens.
func block(ch string, n int) string {
	return strings.Repeat(ch, n*4)
}

func newTestAllocator(t *testing.T, ceiling int) *Allocator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Ceiling = ceiling
	a, err := NewAllocator(cfg)
	require.NoError(t, err)
	return a
}

func TestAllocator_FastPathKeepsEverything(t *testing.T) {
	a := newTestAllocator(t, 2000)

	sections := []Section{
		{Key: "persona", Content: "You are a calm companion.", Priority: Critical},
		{Key: "empty", Content: "", Priority: High},
		{Key: "history", Content: "Yesterday the user wrote about work.", Priority: Low, MaxTokens: 1},
	}

	res, err := a.Allocate(sections)
	require.NoError(t, err)

	assert.False(t, res.SlowPath)
	assert.False(t, res.OverBudget)
	assert.Empty(t, res.Truncated())
	assert.Equal(t, "You are a calm companion.\n\nYesterday the user wrote about work.", res.Text())
	assert.Len(t, res.Outcomes, 2)
}

func TestAllocator_FastPathAtExactCeiling(t *testing.T) {
	a := newTestAllocator(t, 100)

	sections := []Section{
		{Key: "a", Content: block("a", 60), Priority: Low},
		{Key: "b", Content: block("b", 40), Priority: Low},
	}

	out, err := a.Build(sections)
	require.NoError(t, err)
	assert.Equal(t, block("a", 60)+Separator+block("b", 40), out)
}

func TestAllocator_EmptyInputs(t *testing.T) {
	a := newTestAllocator(t, 2000)

	tests := []struct {
		name     string
		sections []Section
	}{
		{name: "nil", sections: nil},
		{name: "no sections", sections: []Section{}},
		{name: "all empty", sections: []Section{
			{Key: "a", Priority: Critical},
			{Key: "b", Priority: High},
			{Key: "c", Priority: Low},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Allocate(tt.sections)
			require.NoError(t, err)
			assert.Equal(t, "", res.Text())
			assert.Equal(t, 0, res.TotalTokens)
			assert.Empty(t, res.Outcomes)
		})
	}
}

func TestAllocator_OversizedCriticalIsUntouched(t *testing.T) {
	a := newTestAllocator(t, 2000)
	persona := block("p", 3000)

	res, err := a.Allocate([]Section{{Key: "persona", Content: persona, Priority: Critical}})
	require.NoError(t, err)

	assert.Equal(t, persona, res.Text())
	assert.True(t, res.SlowPath)
	assert.True(t, res.OverBudget)
	assert.Equal(t, 3000, res.FinalTokens)
}

func TestAllocator_PersonaTriggersHistoryScenario(t *testing.T) {
	a := newTestAllocator(t, 2000)

	persona := strings.Repeat("SYSTEM PERSONA. ", 100)           // 400 tokens
	triggers := strings.Repeat("trigger note. ", 28)             // 98 tokens
	summary := strings.Repeat("old conversation summary. ", 308) // 2002 tokens
	require.Equal(t, 2500, tokens.EstimateTokens(persona+triggers+summary))

	res, err := a.Allocate([]Section{
		{Key: "persona", Content: persona, Priority: Critical},
		{Key: "triggers", Content: triggers, Priority: High},
		{Key: "summary", Content: summary, Priority: Low},
	})
	require.NoError(t, err)

	assert.Equal(t, persona, res.Outcomes[0].Content)
	assert.Equal(t, triggers, res.Outcomes[1].Content)
	assert.Equal(t, []string{"summary"}, res.Truncated())

	trimmed := res.Outcomes[2]
	assert.Equal(t, strings.Repeat("old conversation summary. ", 91)+"old conversation summary.", trimmed.Content)
	assert.LessOrEqual(t, trimmed.FinalTokens, 600)

	outTokens := tokens.EstimateTokens(res.Text())
	assert.Greater(t, outTokens, 1000)
	assert.Less(t, outTokens, 2000)
	assert.False(t, res.OverBudget)
}

func TestAllocator_PreservesInputOrder(t *testing.T) {
	a := newTestAllocator(t, 2000)

	res, err := a.Allocate([]Section{
		{Key: "a", Content: block("a", 1000), Priority: Low},
		{Key: "b", Content: block("b", 500), Priority: Critical},
		{Key: "c", Content: block("c", 1000), Priority: Medium},
	})
	require.NoError(t, err)

	expected := strings.Repeat("a", 1200) + "..." + Separator + block("b", 500) + Separator + block("c", 1000)
	assert.Equal(t, expected, res.Text())
	assert.Equal(t, []string{"a", "c"}, []string{res.Outcomes[0].Key, res.Outcomes[2].Key})
}

func TestAllocator_TrimsOnlyAsMuchAsNeeded(t *testing.T) {
	a := newTestAllocator(t, 2000)

	res, err := a.Allocate([]Section{
		{Key: "x", Content: block("x", 1000), Priority: Low},
		{Key: "y", Content: block("y", 1000), Priority: Low},
		{Key: "c", Content: block("c", 100), Priority: Critical},
	})
	require.NoError(t, err)

	// Ties keep input order, so x absorbs the whole cut.
	assert.Equal(t, []string{"x"}, res.Truncated())
	assert.Equal(t, block("y", 1000), res.Outcomes[1].Content)
}

func TestAllocator_TrimsLowestTierFirst(t *testing.T) {
	a := newTestAllocator(t, 2000)

	res, err := a.Allocate([]Section{
		{Key: "high", Content: block("h", 1000), Priority: High},
		{Key: "medium", Content: block("m", 1000), Priority: Medium},
		{Key: "low", Content: block("l", 500), Priority: Low},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"medium", "low"}, res.Truncated())
	assert.Equal(t, block("h", 1000), res.Outcomes[0].Content)
	assert.Equal(t, strings.Repeat("m", 2000)+"...", res.Outcomes[1].Content)
	assert.Equal(t, strings.Repeat("l", 600)+"...", res.Outcomes[2].Content)
}

func TestAllocator_MaxTokensCapsTrimmedSection(t *testing.T) {
	a := newTestAllocator(t, 2000)

	res, err := a.Allocate([]Section{
		{Key: "history", Content: block("a", 1000), Priority: Low, MaxTokens: 100},
		{Key: "persona", Content: block("p", 1500), Priority: Critical},
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("a", 400)+"...", res.Outcomes[0].Content)
	assert.Equal(t, 101, res.Outcomes[0].FinalTokens)
}

func TestAllocator_MaxTokensLargerThanShareIsIgnored(t *testing.T) {
	a := newTestAllocator(t, 2000)

	res, err := a.Allocate([]Section{
		{Key: "history", Content: block("a", 1000), Priority: Low, MaxTokens: 900},
		{Key: "persona", Content: block("p", 1500), Priority: Critical},
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("a", 1200)+"...", res.Outcomes[0].Content)
}

func TestAllocator_FullWeightNeverTrims(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Low: 1.0}
	a, err := NewAllocator(cfg)
	require.NoError(t, err)

	history := block("h", 1500)
	res, err := a.Allocate([]Section{
		{Key: "persona", Content: block("p", 1000), Priority: Critical},
		{Key: "history", Content: history, Priority: Low},
	})
	require.NoError(t, err)

	assert.Equal(t, history, res.Outcomes[1].Content)
	assert.Empty(t, res.Truncated())
	assert.True(t, res.OverBudget)
}

func TestAllocator_CriticalSurvivesLargeOverflow(t *testing.T) {
	a := newTestAllocator(t, 2000)
	persona := block("c", 3000)

	res, err := a.Allocate([]Section{
		{Key: "high", Content: block("h", 1000), Priority: High},
		{Key: "persona", Content: persona, Priority: Critical},
		{Key: "low", Content: block("l", 1000), Priority: Low},
	})
	require.NoError(t, err)

	assert.Equal(t, persona, res.Outcomes[1].Content)
	assert.False(t, res.Outcomes[1].Truncated)
	assert.Equal(t, []string{"high", "low"}, res.Truncated())
	assert.True(t, res.OverBudget)
	assert.Contains(t, res.Text(), persona)
}

func TestAllocator_RaisingPriorityNeverShrinksShare(t *testing.T) {
	a := newTestAllocator(t, 2000)

	prev := -1
	for _, p := range Priorities() {
		res, err := a.Allocate([]Section{
			{Key: "x", Content: block("x", 1000), Priority: p},
			{Key: "m", Content: block("m", 600), Priority: Medium},
			{Key: "l", Content: block("l", 600), Priority: Low},
		})
		require.NoError(t, err)

		got := len(res.Outcomes[0].Content)
		assert.GreaterOrEqual(t, got, prev, "priority %s shrank the section", p)
		prev = got
	}
}

func TestAllocator_RejectsInvalidSections(t *testing.T) {
	a := newTestAllocator(t, 2000)

	tests := []struct {
		name    string
		section Section
		wantErr error
	}{
		{
			name:    "zero priority",
			section: Section{Key: "a", Content: "text"},
			wantErr: ErrUnknownPriority,
		},
		{
			name:    "out of range priority",
			section: Section{Key: "a", Content: "text", Priority: Priority(9)},
			wantErr: ErrUnknownPriority,
		},
		{
			name:    "invalid priority on empty content",
			section: Section{Key: "a", Priority: Priority(9)},
			wantErr: ErrUnknownPriority,
		},
		{
			name:    "negative max tokens",
			section: Section{Key: "a", Content: "text", Priority: Low, MaxTokens: -1},
			wantErr: ErrNegativeMaxTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Allocate([]Section{tt.section})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAllocator_DuplicateKeysStayPositional(t *testing.T) {
	a := newTestAllocator(t, 2000)

	res, err := a.Allocate([]Section{
		{Key: "note", Content: block("a", 1500), Priority: Low},
		{Key: "note", Content: block("b", 1000), Priority: High},
	})
	require.NoError(t, err)

	assert.True(t, res.Outcomes[0].Truncated)
	assert.False(t, res.Outcomes[1].Truncated)
	assert.Equal(t, block("b", 1000), res.Outcomes[1].Content)
}

func TestAllocator_Observer(t *testing.T) {
	var seen []*Result
	a := newTestAllocator(t, 100).WithObserver(ObserverFunc(func(res *Result) {
		seen = append(seen, res)
	}))

	_, err := a.Allocate([]Section{{Key: "a", Content: block("a", 50), Priority: Low}})
	require.NoError(t, err)
	_, err = a.Allocate([]Section{{Key: "a", Content: block("a", 500), Priority: Low}})
	require.NoError(t, err)
	_, err = a.Allocate([]Section{{Key: "a", Content: "x"}})
	require.Error(t, err)

	require.Len(t, seen, 2)
	assert.False(t, seen[0].SlowPath)
	assert.True(t, seen[1].SlowPath)
	assert.Equal(t, 500-seen[1].FinalTokens, seen[1].TokensTrimmed())
}

func TestAllocator_LogsTruncation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := newTestAllocator(t, 100).WithLogger(logger)

	_, err := a.Allocate([]Section{
		{Key: "persona", Content: block("p", 300), Priority: Critical},
		{Key: "history", Content: block("h", 100), Priority: Low},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "section truncated")
	assert.Contains(t, out, "key=history")
	assert.Contains(t, out, "exceeds ceiling")
}

type runeCounter struct{}

func (runeCounter) Count(text string) int                   { return len([]rune(text)) }
func (runeCounter) FitsInLimit(text string, limit int) bool { return len([]rune(text)) <= limit }

func TestAllocator_WithCounter(t *testing.T) {
	a := newTestAllocator(t, 10).WithCounter(runeCounter{})

	res, err := a.Allocate([]Section{{Key: "a", Content: "twelve chars", Priority: Critical}})
	require.NoError(t, err)
	assert.Equal(t, 12, res.TotalTokens)
	assert.True(t, res.OverBudget)

	assert.True(t, a.ApproachingLimit("12345678", 0.8))
	assert.False(t, a.ApproachingLimit("1234567", 0.8))
}

func TestAllocator_DenserCounterNeverGrowsSection(t *testing.T) {
	a := newTestAllocator(t, 10).WithCounter(runeCounter{})

	res, err := a.Allocate([]Section{{Key: "history", Content: strings.Repeat("x", 25), Priority: Low}})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 1)

	o := res.Outcomes[0]
	assert.True(t, o.Truncated)
	assert.Equal(t, "xxxxxxx...", o.Content)
	assert.Equal(t, 10, o.FinalTokens)
	assert.Less(t, o.FinalTokens, o.OriginalTokens)
}

func TestAllocator_WithCounterLeavesSharedTruncatorAlone(t *testing.T) {
	shared := truncate.New()
	newTestAllocator(t, 10).WithTruncator(shared).WithCounter(runeCounter{})

	// 8 runes are 2 tokens for the estimator but 8 for runeCounter.
	got, cut := shared.Truncate("xxxxxxxx", 2)
	assert.False(t, cut)
	assert.Equal(t, "xxxxxxxx", got)
}

func TestAllocator_ApproachingLimit(t *testing.T) {
	a := newTestAllocator(t, 2000)

	tests := []struct {
		name      string
		text      string
		threshold float64
		expected  bool
	}{
		{name: "at threshold", text: block("a", 1600), threshold: 0.8, expected: true},
		{name: "just under threshold", text: block("a", 1599), threshold: 0.8, expected: false},
		{name: "empty text", text: "", threshold: 0.8, expected: false},
		{name: "full ceiling", text: block("a", 2000), threshold: 1.0, expected: true},
		{name: "zero threshold", text: "", threshold: 0, expected: true},
		{name: "negative threshold clamps to zero", text: "", threshold: -0.5, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.ApproachingLimit(tt.text, tt.threshold))
		})
	}

	assert.True(t, a.IsApproachingLimit(block("a", 1600)))
	assert.False(t, a.IsApproachingLimit(block("a", 1599)))
}

func TestAllocator_ConcurrentUse(t *testing.T) {
	a := newTestAllocator(t, 2000)
	sections := []Section{
		{Key: "persona", Content: block("p", 400), Priority: Critical},
		{Key: "history", Content: strings.Repeat("a sentence here. ", 600), Priority: Low},
	}
	want, err := a.Build(sections)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = a.Build(sections)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestBuildContext(t *testing.T) {
	out, err := BuildContext([]Section{
		{Key: "a", Content: "alpha", Priority: High},
		{Key: "b", Content: "beta", Priority: Low},
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha\n\nbeta", out)

	assert.True(t, IsApproachingLimit(block("a", 1600)))
	assert.False(t, IsApproachingLimit("short"))
}

func BenchmarkAllocator_SlowPath(b *testing.B) {
	a, _ := NewAllocator(DefaultConfig())
	sections := []Section{
		{Key: "persona", Content: strings.Repeat("SYSTEM PERSONA. ", 100), Priority: Critical},
		{Key: "triggers", Content: strings.Repeat("trigger note. ", 28), Priority: High},
		{Key: "summary", Content: strings.Repeat("old conversation summary. ", 308), Priority: Low},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Allocate(sections)
	}
}

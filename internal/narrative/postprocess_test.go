package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripWrapper(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "preamble dropped",
			in:   "Sure, here's the summary:\nThe audit found three gaps.",
			want: "The audit found three gaps.",
		},
		{
			name: "here-is preamble dropped",
			in:   "Here is the executive summary:\nRevenue leaks monthly.",
			want: "Revenue leaks monthly.",
		},
		{
			name: "postamble dropped",
			in:   "The work closes in six weeks.\nLet me know if you'd like changes.",
			want: "The work closes in six weeks.",
		},
		{
			name: "both dropped",
			in:   "Certainly, here you go:\nBody line one.\nBody line two.\nFeel free to ask for more detail.",
			want: "Body line one.\nBody line two.",
		},
		{
			name: "plain text kept",
			in:   "Acme loses $4,000 a month to manual entry.",
			want: "Acme loses $4,000 a month to manual entry.",
		},
		{
			name: "colon line outside lexicon kept",
			in:   "Key risks:\nData loss.",
			want: "Key risks:\nData loss.",
		},
		{
			name: "single line never treated as preamble",
			in:   "Here is what matters most.",
			want: "Here is what matters most.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripWrapper(tt.in))
		})
	}
}

func TestStripFences(t *testing.T) {
	in := "```markdown\nThe body.\n```"
	assert.Equal(t, "The body.", stripFences(in))
	assert.Equal(t, "no fence", stripFences("no fence"))
}

func TestProcessFragment(t *testing.T) {
	spec := PromptSpec{Kind: KindFragment, MaxChars: 200}

	got, warns := Process(spec, "Of course! Here's the text:\n\n**Bold** claim one.\n\n\n\nSecond paragraph.")
	assert.Empty(t, warns)
	assert.Equal(t, "Bold claim one.\n\nSecond paragraph.", got)
}

func TestProcessFragmentClampsAtSentence(t *testing.T) {
	spec := PromptSpec{Kind: KindFragment, MaxChars: 40}

	got, _ := Process(spec, "First sentence here. Second sentence that runs long past the limit.")
	assert.Equal(t, "First sentence here.", got)
}

func TestProcessList(t *testing.T) {
	spec := PromptSpec{Kind: KindList, MaxItems: 3, ItemMaxChars: 80}

	raw := "Here are the bullets:\n- First benefit\n* Second benefit\n• Third benefit\n1. Fourth benefit\n"
	got, warns := Process(spec, raw)
	assert.Empty(t, warns)
	assert.Equal(t, "First benefit\nSecond benefit\nThird benefit", got)
}

func TestProcessListStripsNumberingAndBold(t *testing.T) {
	spec := PromptSpec{Kind: KindList, MaxItems: 5}

	got, _ := Process(spec, "1) **Cut** rework\n2) Save hours\n\n10. Scale later")
	assert.Equal(t, "Cut rework\nSave hours\nScale later", got)
}

func TestClampAtSentence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short kept", in: "All of it fits.", max: 50, want: "All of it fits."},
		{name: "zero max keeps all", in: "Everything.", max: 0, want: "Everything."},
		{
			name: "sentence boundary",
			in:   "Keep this one. Drop this trailing fragment entirely",
			max:  20,
			want: "Keep this one.",
		},
		{
			name: "decimal not a boundary",
			in:   "Costs run $3.5M yearly across teams and regions combined",
			max:  30,
			want: "Costs run $3.5M yearly across…",
		},
		{
			name: "word boundary fallback",
			in:   "no terminal punctuation anywhere in this long string of words",
			max:  25,
			want: "no terminal punctuation…",
		},
		{
			name: "hard cut without spaces",
			in:   "abcdefghijklmnopqrstuvwxyz",
			max:  10,
			want: "abcdefghij",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampAtSentence(tt.in, tt.max))
		})
	}
}

func TestClampAtSentenceWordFallbackRespectsMax(t *testing.T) {
	in := strings.Repeat("word ", 40)
	got := clampAtSentence(in, 23)
	assert.LessOrEqual(t, len([]rune(got)), 23)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestCheckConstraints(t *testing.T) {
	spec := PromptSpec{Kind: KindFragment, Forbidden: []string{"guarantee"}}

	warns := checkConstraints(spec, "We guarantee results for {{client_name}}.")
	assert.Len(t, warns, 2)
	assert.Contains(t, warns[0], "guarantee")
	assert.Contains(t, warns[1], "unrendered")

	assert.Equal(t, []string{"empty output"}, checkConstraints(spec, "   "))
	assert.Empty(t, checkConstraints(spec, "Clean text."))
}

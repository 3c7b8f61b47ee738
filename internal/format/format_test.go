package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtterance(t *testing.T) {
	battery := Fields{Label: "System", Body: "Battery low"}

	tests := []struct {
		name   string
		fields Fields
		opts   Options
		want   string
	}{
		{
			name:   "label and body",
			fields: battery,
			opts:   Options{Template: "#a: #m"},
			want:   "System: Battery low",
		},
		{
			name:   "replacement applied after substitution",
			fields: battery,
			opts: Options{
				Template:     "#a: #m",
				Replacements: []Replacement{{From: "battery LOW", To: "depleted"}},
			},
			want: "System: depleted",
		},
		{
			name:   "replacements run in order on the running result",
			fields: battery,
			opts: Options{
				Template: "#a: #m",
				Replacements: []Replacement{
					{From: "low", To: "empty"},
					{From: "battery empty", To: "charge me"},
				},
			},
			want: "System: charge me",
		},
		{
			name:   "truncation after replacement",
			fields: battery,
			opts: Options{
				Template:     "#a: #m",
				Replacements: []Replacement{{From: "Battery low", To: "depleted"}},
				MaxLength:    10,
			},
			want: "System: de",
		},
		{
			name:   "default template",
			fields: Fields{Label: "Chat", Title: "Sam", Body: "hi"},
			opts:   Options{},
			want:   "Chat. Sam. hi.",
		},
		{
			name:   "template producing only the label falls back",
			fields: Fields{Label: "Mail"},
			opts:   Options{Template: "#a#m"},
			want:   "Notification from Mail.",
		},
		{
			name:   "empty result falls back",
			fields: Fields{Label: "Mail"},
			opts:   Options{Template: "#c#m"},
			want:   "Notification from Mail.",
		},
		{
			name:   "malformed template falls back",
			fields: battery,
			opts:   Options{Template: "%d #a"},
			want:   "Notification from System.",
		},
		{
			name:   "ticker is sanitised",
			fields: Fields{Label: "X", Ticker: "[alert]**now**"},
			opts:   Options{Template: "#t"},
			want:   " alert now ",
		},
		{
			name:   "all placeholders",
			fields: Fields{Label: "a", Ticker: "t", Subtext: "s", Title: "c", Body: "m", InfoText: "i"},
			opts:   Options{Template: "#a#t#s#c#m#i #x"},
			want:   "atscmi #x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Utterance(tt.fields, tt.opts))
		})
	}
}

func TestExpandPercent(t *testing.T) {
	got, err := Expand("100%% #m%n", Fields{Body: "done"})
	require.NoError(t, err)
	assert.Equal(t, "100% done\n", got)

	_, err = Expand("trailing %", Fields{})
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}

func TestReplaceIsLiteral(t *testing.T) {
	got := Replace("cost: $5 (approx.)", []Replacement{
		{From: "(approx.)", To: "roughly"},
		{From: "$5", To: "five dollars"},
		{From: "", To: "ignored"},
	})
	assert.Equal(t, "cost: five dollars roughly", got)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "unlimited", Truncate("unlimited", 0))
}

func TestParseReplacements(t *testing.T) {
	reps := ParseReplacements("lol\nlaughing\nbrb\nbe right back\n\n")
	require.Len(t, reps, 2)
	assert.Equal(t, Replacement{From: "lol", To: "laughing"}, reps[0])
	assert.Equal(t, Replacement{From: "brb", To: "be right back"}, reps[1])

	assert.Len(t, ParseReplacements("odd\none\nleft"), 1)
	assert.Nil(t, ParseReplacements(""))

	assert.Equal(t, "lol\nlaughing\nbrb\nbe right back", EncodeReplacements(reps))
}

package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions_Valid(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "truncation disabled", mutate: func(o *Options) { o.MaxTextLength = 0 }},
		{name: "negative cap", mutate: func(o *Options) { o.MaxTextLength = -1 }, wantErr: true},
		{name: "cap too small for note", mutate: func(o *Options) { o.MaxTextLength = 10 }, wantErr: true},
		{name: "smallest cap", mutate: func(o *Options) { o.MaxTextLength = minTruncateLength }},
		{name: "zero readable length", mutate: func(o *Options) { o.MinReadableLength = 0 }, wantErr: true},
		{name: "ratio of one", mutate: func(o *Options) { o.MinLetterRatio = 1 }, wantErr: true},
		{name: "negative ratio", mutate: func(o *Options) { o.MinLetterRatio = -0.1 }, wantErr: true},
		{name: "zero ratio", mutate: func(o *Options) { o.MinLetterRatio = 0 }},
		{name: "zero run length", mutate: func(o *Options) { o.MinRunLength = 0 }, wantErr: true},
		{name: "printable above run", mutate: func(o *Options) { o.MinRunPrintable = 21 }, wantErr: true},
		{name: "zero window", mutate: func(o *Options) { o.PatternWindow = 0 }, wantErr: true},
		{name: "zero search limit", mutate: func(o *Options) { o.LiteralSearchLimit = 0 }, wantErr: true},
		{name: "zero interval", mutate: func(o *Options) { o.NormalizeInterval = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			assert.NoError(t, err)
		})
	}
}

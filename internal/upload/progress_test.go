package upload

import (
	"testing"

	"github.com/jonathan/resume-formatter/internal/client"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestStageProgress(t *testing.T) {
	tests := []struct {
		stage    string
		progress int
		want     int
		known    bool
	}{
		{types.StageUpload, 0, 0, true},
		{types.StageUpload, 100, 30, true},
		{types.StageConversion, 50, 35, true},
		{types.StageExtraction, 0, 40, true},
		{types.StageExtraction, 100, 70, true},
		{types.StageParsing, 50, 85, true},
		{types.StageParsing, 150, 100, true},
		{types.StageCompletion, 0, 100, true},
		{"queued", 50, 0, false},
	}

	for _, tt := range tests {
		got, ok := StageProgress(tt.stage, tt.progress)
		assert.Equal(t, tt.known, ok, tt.stage)
		assert.Equal(t, tt.want, got, "%s %d", tt.stage, tt.progress)
	}
}

func TestBatchProgress(t *testing.T) {
	assert.Equal(t, 10, BatchProgress(0))
	assert.Equal(t, 55, BatchProgress(50))
	assert.Equal(t, 100, BatchProgress(100))
	assert.Equal(t, 10, BatchProgress(-5))
}

func TestTransmitProgress(t *testing.T) {
	assert.Equal(t, 0, TransmitProgress(ModeSingle, 0, 0))
	assert.Equal(t, 15, TransmitProgress(ModeSingle, 50, 100))
	assert.Equal(t, 30, TransmitProgress(ModeSingle, 100, 100))
	assert.Equal(t, 10, TransmitProgress(ModeBatch, 100, 100))
}

func TestMonotonic(t *testing.T) {
	var m monotonic
	assert.Equal(t, 40, m.advance(40))
	assert.Equal(t, 40, m.advance(10))
	assert.Equal(t, 100, m.advance(120))
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateIdle.CanTransition(StateUploading))
	assert.False(t, StateIdle.CanTransition(StateProcessing))
	assert.True(t, StateUploading.CanTransition(StateFailed))
	assert.True(t, StateProcessing.CanTransition(StateProcessing))
	assert.False(t, StateCompleted.CanTransition(StateFailed))
	assert.False(t, StateFailed.CanTransition(StateUploading))
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateProcessing.Terminal())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	assert.NoError(t, err)
	assert.Equal(t, ModeSingle, m)

	m, err = ParseMode("batch")
	assert.NoError(t, err)
	assert.Equal(t, ModeBatch, m)

	_, err = ParseMode("bulk")
	assert.Error(t, err)
}

func TestValidateFiles(t *testing.T) {
	ok := client.File{Name: "a.pdf", Data: []byte("x")}
	tests := []struct {
		name    string
		mode    Mode
		files   []client.File
		wantErr bool
	}{
		{name: "single ok", mode: ModeSingle, files: []client.File{ok}},
		{name: "single none", mode: ModeSingle, wantErr: true},
		{name: "single two", mode: ModeSingle, files: []client.File{ok, ok}, wantErr: true},
		{name: "batch ten", mode: ModeBatch, files: make10(ok)},
		{name: "batch eleven", mode: ModeBatch, files: append(make10(ok), ok), wantErr: true},
		{name: "batch none", mode: ModeBatch, wantErr: true},
		{name: "bad extension", mode: ModeSingle, files: []client.File{{Name: "a.png", Data: []byte("x")}}, wantErr: true},
		{name: "empty file", mode: ModeSingle, files: []client.File{{Name: "a.docx"}}, wantErr: true},
		{name: "unknown mode", mode: "x", files: []client.File{ok}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFiles(tt.mode, tt.files)
			if tt.wantErr {
				var valErr *ValidationError
				assert.ErrorAs(t, err, &valErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func make10(f client.File) []client.File {
	out := make([]client.File, 10)
	for i := range out {
		out[i] = f
	}
	return out
}

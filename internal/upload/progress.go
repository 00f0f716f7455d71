package upload

import "github.com/jonathan/resume-formatter/internal/types"

// stageRange is the slice of the 0-100 global scale a backend stage occupies.
type stageRange struct {
	start int
	end   int
}

// singleStageRanges place each backend stage on the global scale so the
// displayed percentage does not restart at 0 for every stage.
var singleStageRanges = map[string]stageRange{
	types.StageUpload:     {start: 0, end: 30},
	types.StageConversion: {start: 30, end: 40},
	types.StageExtraction: {start: 40, end: 70},
	types.StageParsing:    {start: 70, end: 100},
	types.StageCompletion: {start: 100, end: 100},
}

// batchUploadEnd is where client-side transmission ends in batch mode; the
// backend's overall_progress fills the rest.
const batchUploadEnd = 10

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func (r stageRange) scale(p int) int {
	return r.start + (r.end-r.start)*clampPercent(p)/100
}

// StageProgress maps a stage's in-stage progress onto the global scale.
// The second result is false for stages the controller does not know.
func StageProgress(stage string, progress int) (int, bool) {
	r, ok := singleStageRanges[stage]
	if !ok {
		return 0, false
	}
	return r.scale(progress), true
}

// BatchProgress maps the backend's aggregate batch progress onto the global scale.
func BatchProgress(overall int) int {
	return stageRange{start: batchUploadEnd, end: 100}.scale(overall)
}

// TransmitProgress maps bytes sent onto the upload slice of the global scale.
func TransmitProgress(mode Mode, sent, total int64) int {
	if total <= 0 {
		return 0
	}
	r := singleStageRanges[types.StageUpload]
	if mode == ModeBatch {
		r = stageRange{start: 0, end: batchUploadEnd}
	}
	return r.scale(int(sent * 100 / total))
}

// monotonic keeps the highest progress value seen during a run.
type monotonic struct {
	value int
}

func (m *monotonic) advance(p int) int {
	if p = clampPercent(p); p > m.value {
		m.value = p
	}
	return m.value
}

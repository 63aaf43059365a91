package pipeline

// Stage is a step of a pipeline run.
type Stage int

const (
	StageStart Stage = iota
	StageParamsValidated
	StageInputResolved
	StageVariablesAssembled
	StageTemplateLocated
	StageRendered
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageParamsValidated:
		return "params_validated"
	case StageInputResolved:
		return "input_resolved"
	case StageVariablesAssembled:
		return "variables_assembled"
	case StageTemplateLocated:
		return "template_located"
	case StageRendered:
		return "rendered"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

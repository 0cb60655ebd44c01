package audit

import "github.com/nao1215/a11yscan/internal/model"

// Observer receives run events. Calls are serialized by the Orchestrator.
// A callback that wants to end the run calls Orchestrator.Stop; Cancel
// waits for the current callback to return and would never come back.
type Observer interface {
	// OnProgress is called when a URL starts and again when it finishes.
	OnProgress(p model.Progress)
	// OnResults delivers the findings of one URL. It is not called for a
	// URL without findings.
	OnResults(findings []model.Finding)
	// OnError reports a fetch, evaluator or system failure.
	OnError(e model.RunError)
	// OnComplete is called once after every URL was attempted.
	// It is not called for a cancelled run.
	OnComplete()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Progress func(model.Progress)
	Results  func([]model.Finding)
	Error    func(model.RunError)
	Complete func()
}

// OnProgress implements Observer.
func (f ObserverFuncs) OnProgress(p model.Progress) {
	if f.Progress != nil {
		f.Progress(p)
	}
}

// OnResults implements Observer.
func (f ObserverFuncs) OnResults(findings []model.Finding) {
	if f.Results != nil {
		f.Results(findings)
	}
}

// OnError implements Observer.
func (f ObserverFuncs) OnError(e model.RunError) {
	if f.Error != nil {
		f.Error(e)
	}
}

// OnComplete implements Observer.
func (f ObserverFuncs) OnComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

var _ Observer = ObserverFuncs{}

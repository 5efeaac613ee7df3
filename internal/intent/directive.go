package intent

import "chainlens-backend/internal/blockscout"

// Directive is the decision extracted from a completion. Exactly one of the
// concrete types below is returned by Parse.
type Directive interface {
	directive()
}

// PlainText is the fallback when the reply carries no usable directive; the
// model answered in prose and the text is shown as is.
type PlainText struct {
	Text string
}

// Clarification asks the user a question instead of fetching data.
type Clarification struct {
	Message string
}

// DirectCall is a single Blockscout operation.
type DirectCall struct {
	Tool        blockscout.Tool
	Params      blockscout.Params
	Explanation string
}

// ChainedCall resolves a name first and feeds the resolved address into
// the next operation.
type ChainedCall struct {
	ResolutionTool   blockscout.Tool
	ResolutionParams blockscout.Params
	NextTool         blockscout.Tool
	NextParams       blockscout.Params
	Explanation      string
}

func (PlainText) directive()     {}
func (Clarification) directive() {}
func (DirectCall) directive()    {}
func (ChainedCall) directive()   {}

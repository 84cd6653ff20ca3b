package embedding

import "slices"

// Tensor is an int64 input fed to the encoder.
type Tensor struct {
	Name  string
	Shape []int64
	Data  []int64
}

// Output is a float32 tensor produced by the encoder.
type Output struct {
	Shape []int64
	Data  []float32
}

// Model is a loaded neural text encoder.
type Model interface {
	InputNames() []string
	OutputNames() []string
	Run(inputs []Tensor, output string) (Output, error)
	Close() error
}

// ModelLoader loads the encoder from its asset.
type ModelLoader interface {
	Load() (Model, error)
}

// InputBinding names the encoder inputs for ids, attention mask and token
// type ids. TypeIDs is optional.
type InputBinding struct {
	IDs     string
	Mask    string
	TypeIDs string
}

// inputCandidates are tried in order against the names a model declares.
var inputCandidates = []InputBinding{
	{IDs: "input_ids", Mask: "attention_mask", TypeIDs: "token_type_ids"},
	{IDs: "input_ids:0", Mask: "attention_mask:0", TypeIDs: "token_type_ids:0"},
	{IDs: "input_word_ids", Mask: "input_mask", TypeIDs: "input_type_ids"},
	{IDs: "ids", Mask: "mask", TypeIDs: "type_ids"},
}

// outputCandidates are hidden-state names in priority order.
var outputCandidates = []string{"last_hidden_state", "embeddings", "sequence_output", "output"}

// segmentAlias is the original BERT name for token type ids.
const segmentAlias = "segment_ids"

// negotiateInputs picks the first candidate whose ids and mask are declared
// and which covers every declared input. The type-ids name is kept only when
// the model declares it. When no candidate fits, each declared input is
// matched against every known alias instead.
func negotiateInputs(declared []string) (InputBinding, bool) {
	for _, candidate := range inputCandidates {
		if !slices.Contains(declared, candidate.IDs) || !slices.Contains(declared, candidate.Mask) {
			continue
		}
		binding := InputBinding{IDs: candidate.IDs, Mask: candidate.Mask}
		if slices.Contains(declared, candidate.TypeIDs) {
			binding.TypeIDs = candidate.TypeIDs
		}
		if binding.covers(declared) {
			return binding, true
		}
	}
	return aliasBinding(declared)
}

// aliasBinding binds mixed alias names, e.g. input_ids with input_mask. Every
// declared input must be a known alias, each role at most once, and ids are
// required.
func aliasBinding(declared []string) (InputBinding, bool) {
	var binding InputBinding
	for _, name := range declared {
		var slot *string
		switch {
		case isAlias(name, func(c InputBinding) string { return c.IDs }):
			slot = &binding.IDs
		case isAlias(name, func(c InputBinding) string { return c.Mask }):
			slot = &binding.Mask
		case name == segmentAlias || isAlias(name, func(c InputBinding) string { return c.TypeIDs }):
			slot = &binding.TypeIDs
		default:
			return InputBinding{}, false
		}
		if *slot != "" {
			return InputBinding{}, false
		}
		*slot = name
	}
	if binding.IDs == "" {
		return InputBinding{}, false
	}
	return binding, true
}

func isAlias(name string, field func(InputBinding) string) bool {
	for _, candidate := range inputCandidates {
		if field(candidate) == name {
			return true
		}
	}
	return false
}

func (b InputBinding) covers(declared []string) bool {
	for _, name := range declared {
		if name != b.IDs && name != b.Mask && name != b.TypeIDs {
			return false
		}
	}
	return true
}

func negotiateOutput(declared []string) (string, bool) {
	for _, candidate := range outputCandidates {
		if slices.Contains(declared, candidate) {
			return candidate, true
		}
	}
	return "", false
}

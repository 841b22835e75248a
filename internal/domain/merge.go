package domain

import (
	"dario.cat/mergo"
)

// MergeDefaults fills a step's resolved inputs with the schema-declared
// defaults. Step-supplied values win; defaults only fill gaps. Note that
// mergo treats zero values ("" and 0) as fillable, so an explicitly empty
// step input defers to the default.
func MergeDefaults(inputs, defaults map[string]interface{}) (map[string]interface{}, error) {
	if len(defaults) == 0 {
		if inputs == nil {
			return map[string]interface{}{}, nil
		}
		return inputs, nil
	}

	merged := DeepCopyDocument(inputs)
	if merged == nil {
		merged = map[string]interface{}{}
	}

	if err := mergo.Merge(&merged, DeepCopyDocument(defaults)); err != nil {
		return nil, NewDefinitionError("failed to merge schema defaults", err)
	}

	return merged, nil
}

package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/ports"
)

// Assembler applies declared assembly operations against a source step's
// output. Every operation is a pure function of (operation, source, chooser);
// the only state is the random source behind select_random, which is
// seedable for reproducible runs.
type Assembler struct {
	chooser ports.Chooser
	rng     *rand.Rand
	mu      sync.Mutex
	logger  *slog.Logger
}

func NewAssembler(chooser ports.Chooser, config domain.AssemblyConfig, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}

	seed := time.Now().UnixNano()
	if config.Seeded {
		seed = config.Seed
	}

	return &Assembler{
		chooser: chooser,
		rng:     rand.New(rand.NewSource(seed)),
		logger:  logger.With("component", "assembler"),
	}
}

// Apply evaluates every declared output of an assembly step. Outputs are
// processed in sorted key order so seeded runs draw from the random source
// deterministically.
func (a *Assembler) Apply(ctx context.Context, assembly map[string]domain.AssemblyOp, source map[string]interface{}) (map[string]interface{}, error) {
	outputs := make([]string, 0, len(assembly))
	for output := range assembly {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)

	result := make(map[string]interface{}, len(assembly))
	for _, output := range outputs {
		value, err := a.applyOne(ctx, output, assembly[output], source)
		if err != nil {
			return nil, err
		}
		result[output] = value
	}

	return result, nil
}

func (a *Assembler) applyOne(ctx context.Context, output string, op domain.AssemblyOp, source map[string]interface{}) (interface{}, error) {
	if err := op.Validate(output); err != nil {
		return nil, err
	}

	sourceValue, ok := source[op.From]
	if !ok {
		return nil, domain.NewMissingFieldError(output, op.Action, op.From)
	}

	switch op.Action {
	case domain.ActionSelectIndex:
		return a.selectIndex(output, op, sourceValue)
	case domain.ActionSelectRandom:
		return a.selectRandom(output, op, sourceValue)
	case domain.ActionExtract:
		return sourceValue, nil
	case domain.ActionFilter:
		return a.filter(output, op, sourceValue)
	case domain.ActionTransform:
		return a.transform(output, op, sourceValue)
	case domain.ActionIntelligentSelect:
		return a.intelligentSelect(ctx, output, op, sourceValue)
	default:
		return nil, domain.NewBadOperationError(output, op.Action, "unknown assembly action")
	}
}

func (a *Assembler) selectIndex(output string, op domain.AssemblyOp, sourceValue interface{}) (interface{}, error) {
	arr, ok := sourceValue.([]interface{})
	if !ok {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("field %q is %s, not an array", op.From, domain.KindOf(sourceValue)))
	}

	index := 0
	if op.Index != nil {
		index = *op.Index
	}
	if index < 0 || index >= len(arr) {
		return nil, domain.NewIndexOutOfRangeError(output, index, len(arr))
	}

	return a.project(output, op, arr[index])
}

func (a *Assembler) selectRandom(output string, op domain.AssemblyOp, sourceValue interface{}) (interface{}, error) {
	arr, ok := sourceValue.([]interface{})
	if !ok {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("field %q is %s, not an array", op.From, domain.KindOf(sourceValue)))
	}
	if len(arr) == 0 {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("field %q is an empty array", op.From))
	}

	var index int
	if op.Seed != nil {
		index = rand.New(rand.NewSource(*op.Seed)).Intn(len(arr))
	} else {
		a.mu.Lock()
		index = a.rng.Intn(len(arr))
		a.mu.Unlock()
	}

	a.logger.Debug("random selection", "output", output, "index", index, "candidates", len(arr))
	return a.project(output, op, arr[index])
}

func (a *Assembler) filter(output string, op domain.AssemblyOp, sourceValue interface{}) (interface{}, error) {
	arr, ok := sourceValue.([]interface{})
	if !ok {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("field %q is %s, not an array", op.From, domain.KindOf(sourceValue)))
	}

	// An empty result is a valid result, not an error.
	kept := make([]interface{}, 0, len(arr))
	for _, elem := range arr {
		obj, ok := elem.(map[string]interface{})
		if !ok {
			continue
		}
		fieldValue, ok := obj[op.Field]
		if !ok {
			continue
		}
		if op.Equals != nil {
			if reflect.DeepEqual(fieldValue, op.Equals) {
				kept = append(kept, elem)
			}
			continue
		}
		if strings.Contains(domain.Stringify(fieldValue), op.Contains) {
			kept = append(kept, elem)
		}
	}

	return kept, nil
}

func (a *Assembler) transform(output string, op domain.AssemblyOp, sourceValue interface{}) (interface{}, error) {
	switch op.Mode {
	case domain.TransformFlatten:
		arr, ok := sourceValue.([]interface{})
		if !ok {
			return nil, domain.NewBadSourceError(output, op.Action,
				fmt.Sprintf("flatten requires an array, field %q is %s", op.From, domain.KindOf(sourceValue)))
		}
		flat := make([]interface{}, 0, len(arr))
		for _, elem := range arr {
			if inner, ok := elem.([]interface{}); ok {
				flat = append(flat, inner...)
			} else {
				flat = append(flat, elem)
			}
		}
		return flat, nil

	case domain.TransformRenameKeys:
		switch v := sourceValue.(type) {
		case map[string]interface{}:
			return renameKeys(v, op.Rename), nil
		case []interface{}:
			out := make([]interface{}, len(v))
			for i, elem := range v {
				if obj, ok := elem.(map[string]interface{}); ok {
					out[i] = renameKeys(obj, op.Rename)
				} else {
					out[i] = elem
				}
			}
			return out, nil
		default:
			return nil, domain.NewBadSourceError(output, op.Action,
				fmt.Sprintf("rename_keys requires an object or array of objects, field %q is %s", op.From, domain.KindOf(sourceValue)))
		}

	default:
		return nil, domain.NewBadOperationError(output, op.Action, fmt.Sprintf("unknown transform mode %q", op.Mode))
	}
}

func renameKeys(obj map[string]interface{}, rename map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for key, value := range obj {
		if renamed, ok := rename[key]; ok {
			key = renamed
		}
		out[key] = value
	}
	return out
}

func (a *Assembler) intelligentSelect(ctx context.Context, output string, op domain.AssemblyOp, sourceValue interface{}) (interface{}, error) {
	arr, ok := sourceValue.([]interface{})
	if !ok {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("field %q is %s, not an array", op.From, domain.KindOf(sourceValue)))
	}
	if len(arr) == 0 {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("field %q is an empty array", op.From))
	}

	if a.chooser == nil {
		return nil, domain.NewSelectionError(output, op.Criteria, domain.ErrNoChooser)
	}

	index, err := a.chooser.Choose(ctx, arr, op.Criteria)
	if err != nil {
		return nil, domain.NewSelectionError(output, op.Criteria, err)
	}
	if index < 0 || index >= len(arr) {
		return nil, domain.NewSelectionError(output, op.Criteria,
			fmt.Errorf("chooser returned index %d for %d candidates", index, len(arr)))
	}

	a.logger.Debug("intelligent selection",
		"output", output,
		"index", index,
		"candidates", len(arr),
	)

	return a.project(output, op, arr[index])
}

// project applies the optional extract modifier to a selected element.
func (a *Assembler) project(output string, op domain.AssemblyOp, elem interface{}) (interface{}, error) {
	if op.Extract == "" {
		return elem, nil
	}

	obj, ok := elem.(map[string]interface{})
	if !ok {
		return nil, domain.NewBadSourceError(output, op.Action,
			fmt.Sprintf("cannot extract %q from %s element", op.Extract, domain.KindOf(elem)))
	}
	value, ok := obj[op.Extract]
	if !ok {
		return nil, domain.NewMissingFieldError(output, op.Action, op.Extract)
	}
	return value, nil
}

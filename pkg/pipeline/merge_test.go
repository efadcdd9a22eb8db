package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeContextsSlicesAppendByPrefixDiff(t *testing.T) {
	t.Parallel()

	original := NewContext(0, nil)
	original.Results["files"] = []string{"a.txt"}

	branch1 := original.Clone()
	branch1.Results["files"] = []string{"a.txt", "b.txt"}

	branch2 := original.Clone()
	branch2.Results["files"] = []string{"a.txt", "c.txt"}

	merged := mergeContexts(original, []*Context[int]{branch1, branch2})

	require.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt"}, merged.Results["files"])
}

func TestMergeContextsNumericAddsPositiveIncrementsOnly(t *testing.T) {
	t.Parallel()

	original := NewContext(0, nil)
	original.Results["bytes"] = 100

	branch1 := original.Clone()
	branch1.Results["bytes"] = 150

	branch2 := original.Clone()
	branch2.Results["bytes"] = 90 // negative increment, ignored

	merged := mergeContexts(original, []*Context[int]{branch1, branch2})

	require.Equal(t, 150, merged.Results["bytes"])
}

func TestMergeContextsMapsShallowUpdate(t *testing.T) {
	t.Parallel()

	original := NewContext(0, nil)
	original.Results["heads"] = map[string]any{"main": "abc"}

	branch1 := original.Clone()
	branch1.Results["heads"] = map[string]any{"main": "abc", "dev": "def"}

	branch2 := original.Clone()
	branch2.Results["heads"] = map[string]any{"release": "ghi"}

	merged := mergeContexts(original, []*Context[int]{branch1, branch2})

	require.Equal(t, map[string]any{"main": "abc", "dev": "def", "release": "ghi"}, merged.Results["heads"])
}

func TestMergeContextsLastWriterWinsForOpaqueValues(t *testing.T) {
	t.Parallel()

	original := NewContext(0, nil)

	branch1 := original.Clone()
	branch1.Results["status"] = "ok"

	branch2 := original.Clone()
	branch2.Results["status"] = "degraded"

	merged := mergeContexts(original, []*Context[int]{branch1, branch2})

	require.Equal(t, "degraded", merged.Results["status"])
}

func TestMergeContextsAppendsErrorSuffixesInOrder(t *testing.T) {
	t.Parallel()

	original := NewContext(0, nil)
	original.Errors = append(original.Errors, &StepFailure{StepID: "pre-existing"})

	branch1 := original.Clone()
	branch1.Errors = append(branch1.Errors, &StepFailure{StepID: "b1"})

	branch2 := original.Clone()
	branch2.Errors = append(branch2.Errors, &StepFailure{StepID: "b2"})

	merged := mergeContexts(original, []*Context[int]{branch1, branch2})

	require.Len(t, merged.Errors, 3)
	require.Equal(t, "b1", merged.Errors[1].(*StepFailure).StepID)
	require.Equal(t, "b2", merged.Errors[2].(*StepFailure).StepID)
}

func TestMergeContextsMismatchedNumericCategoryReplaces(t *testing.T) {
	t.Parallel()

	original := NewContext(0, nil)
	original.Results["count"] = 3

	branch := original.Clone()
	branch.Results["count"] = 2.5

	merged := mergeContexts(original, []*Context[int]{branch})

	require.Equal(t, 2.5, merged.Results["count"])
}

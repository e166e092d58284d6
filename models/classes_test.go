package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/models/model"
)

func TestClassSets(t *testing.T) {
	assert.Len(t, COCOClasses.Labels, 81)
	assert.Len(t, YOLOClasses.Labels, 80)
	assert.Len(t, PascalVOCClasses.Labels, 21)

	assert.Equal(t, "person", YOLOClasses.Name(0))
	assert.Equal(t, "toothbrush", YOLOClasses.Name(79))
	assert.Equal(t, "", YOLOClasses.Name(80))
	assert.Equal(t, "__background__", COCOClasses.Name(0))
}

func TestClassIndices(t *testing.T) {
	ids, err := YOLOClasses.Indices([]string{"person", " Car ", "", "truck"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 7}, ids)

	_, err = YOLOClasses.Indices([]string{"unicorn"})
	assert.Error(t, err)
}

func TestClassSetLookup(t *testing.T) {
	set, err := ClassSet(model.ModelFamilyVOC)
	require.NoError(t, err)
	assert.Equal(t, "aeroplane", set.Name(1))

	_, err = ClassSet("tf")
	assert.Error(t, err)
}

func TestNamesIsACopy(t *testing.T) {
	names := YOLOClasses.Names()
	names[0] = "changed"
	assert.Equal(t, "person", YOLOClasses.Name(0))
}

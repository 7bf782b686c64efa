package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateAnimationDescriptorValid tests a well-formed descriptor
func TestValidateAnimationDescriptorValid(t *testing.T) {
	doc := []byte(`{
		"width": 1920,
		"height": 1080,
		"fps": 30,
		"duration_seconds": 5.0,
		"strokes": [
			{
				"path": "M 0 0 L 10 10",
				"stroke": "#000000",
				"stroke_width": 2.0,
				"length": 120.0,
				"start_seconds": 0,
				"duration_seconds": 5.0
			}
		]
	}`)

	assert.NoError(t, ValidateAnimationDescriptor(doc))
}

// TestValidateAnimationDescriptorMissingFields tests that required fields are enforced
func TestValidateAnimationDescriptorMissingFields(t *testing.T) {
	doc := []byte(`{"width": 1920, "height": 1080}`)

	err := ValidateAnimationDescriptor(doc)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, err.Error(), "descriptor validation failed")
}

// TestValidateAnimationDescriptorEmptyStrokes tests that at least one stroke is required
func TestValidateAnimationDescriptorEmptyStrokes(t *testing.T) {
	doc := []byte(`{
		"width": 1920,
		"height": 1080,
		"fps": 30,
		"duration_seconds": 5.0,
		"strokes": []
	}`)

	assert.Error(t, ValidateAnimationDescriptor(doc))
}

// TestValidateAnimationDescriptorMalformedJSON tests invalid JSON input
func TestValidateAnimationDescriptorMalformedJSON(t *testing.T) {
	err := ValidateAnimationDescriptor([]byte(`{not json`))
	assert.Error(t, err)
}

// TestValidateAnimationDescriptorBadStrokeColor tests the stroke color pattern
func TestValidateAnimationDescriptorBadStrokeColor(t *testing.T) {
	doc := []byte(`{
		"width": 1920,
		"height": 1080,
		"fps": 30,
		"duration_seconds": 5.0,
		"strokes": [
			{
				"path": "M 0 0",
				"stroke": "black",
				"length": 100,
				"start_seconds": 0,
				"duration_seconds": 5.0
			}
		]
	}`)

	assert.Error(t, ValidateAnimationDescriptor(doc))
}

package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText_InvalidDocument(t *testing.T) {
	text, err := ExtractText([]byte("not a pdf at all"))

	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestExtractText_EmptyInput(t *testing.T) {
	text, err := ExtractText(nil)

	assert.Error(t, err)
	assert.Empty(t, text)
}

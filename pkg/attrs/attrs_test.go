package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "shareregistry/pkg/domain"
)

func TestExtractString(t *testing.T) {
	pid := id.NewProfileID()
	list := []any{"client_id", "C-1", "profile_id", pid, "count", 3, 42, "ignored", "dangling"}

	assert.Equal(t, "C-1", ExtractString(list, "client_id"))
	assert.Equal(t, pid.String(), ExtractString(list, "profile_id"))
	assert.Empty(t, ExtractString(list, "count"))
	assert.Empty(t, ExtractString(list, "missing"))
	assert.Empty(t, ExtractString(list, "dangling"))
	assert.Empty(t, ExtractString(nil, "client_id"))
}

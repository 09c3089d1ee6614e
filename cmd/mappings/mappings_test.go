package mappings

import (
	"strings"
	"testing"

	"rbc2mm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingsCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range Cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add"}, names)
}

func TestList(t *testing.T) {
	var b strings.Builder
	err := List(&b, []models.MappingEntry{
		{Description1: "HAPPY BURGER*", Category: "Food", Subcategory: "Lunch", Note: "Happy Burger"},
		{Description1: "*", Description2: "E-TRANSFER*", Category: "Transfer"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "HAPPY BURGER*")
	assert.Contains(t, lines[2], "E-TRANSFER*")
	assert.True(t, strings.HasPrefix(lines[2], "2"))
}

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagegaming/storebot/core/buildinfo"
	"github.com/villagegaming/storebot/internal/catalog"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, buildinfo.String()+"\n", out.String())
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "catalog", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestPrintItems(t *testing.T) {
	orig := 3999.0
	items := []catalog.Item{
		{ID: 1, Title: "Hades", Price: 2999, OriginalPrice: &orig, Platforms: catalog.StringList{"PS5", "PC"}},
		{ID: 2, Title: "Celeste", Price: 199.5},
	}
	var out bytes.Buffer
	require.NoError(t, printItems(&out, items))
	text := out.String()
	assert.Contains(t, text, "Hades")
	assert.Contains(t, text, "2999 ₽")
	assert.Contains(t, text, "-25%")
	assert.Contains(t, text, "PS5, PC")
	assert.Contains(t, text, "199.50 ₽")
}
